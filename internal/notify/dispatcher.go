// Package notify decouples notification fanout from the mutations that
// trigger it. Dispatch is asynchronous and best-effort: a failed write
// is logged and never propagates into the caller's response path.
package notify

import (
	"log"
	"sync"

	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/repositories"
)

// Dispatcher persists notifications on their own goroutines.
type Dispatcher struct {
	notificationRepository repositories.NotificationRepository
	wg                     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher on top of the given repository
func NewDispatcher(notifRepo repositories.NotificationRepository) *Dispatcher {
	return &Dispatcher{notificationRepository: notifRepo}
}

// Dispatch enqueues a notification write. Self-notifications
// (recipient == actor) are dropped.
func (d *Dispatcher) Dispatch(n *models.Notification) {
	if n.RecipientID == n.ActorID {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.notificationRepository.CreateNotification(n); err != nil {
			log.Printf("notify: failed to create %s notification for user %d: %v", n.Type, n.RecipientID, err)
		}
	}()
}

// Flush blocks until all in-flight dispatches have completed.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}
