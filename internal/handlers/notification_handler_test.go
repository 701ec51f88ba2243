package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/debatify/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture(t *testing.T) (*NotificationHandler, *memNotificationRepo) {
	t.Helper()
	userRepo := newMemUserRepo()
	notifRepo := newMemNotificationRepo()
	require.NoError(t, userRepo.CreateUser(&models.User{ID: 1, Username: "alice", Email: "alice@example.com"}))
	require.NoError(t, userRepo.CreateUser(&models.User{ID: 2, Username: "bob", Email: "bob@example.com"}))
	return NewNotificationHandler(notifRepo, userRepo), notifRepo
}

func TestNotificationListIsRecipientScopedAndEnriched(t *testing.T) {
	handler, repo := newNotificationFixture(t)
	require.NoError(t, repo.CreateNotification(&models.Notification{Type: models.NotificationFollow, ActorID: 2, RecipientID: 1, Message: "bob started following you"}))
	require.NoError(t, repo.CreateNotification(&models.Notification{Type: models.NotificationUpvote, ActorID: 1, RecipientID: 2, Message: "alice upvoted your blog"}))

	c, rec := newTestContext(t, http.MethodGet, "/api/notifications", "", 1)
	require.NoError(t, handler.List(c))

	var resp []NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, models.NotificationFollow, resp[0].Type)
	require.Equal(t, "bob", resp[0].Actor.Username)
}

func TestUnreadCountAndMarkAsRead(t *testing.T) {
	handler, repo := newNotificationFixture(t)
	n := &models.Notification{Type: models.NotificationComment, ActorID: 2, RecipientID: 1}
	require.NoError(t, repo.CreateNotification(n))
	require.NoError(t, repo.CreateNotification(&models.Notification{Type: models.NotificationUpvote, ActorID: 2, RecipientID: 1}))

	c, rec := newTestContext(t, http.MethodGet, "/api/notifications/unread-count", "", 1)
	require.NoError(t, handler.UnreadCount(c))
	require.JSONEq(t, `{"unreadCount":2}`, rec.Body.String())

	c, rec = newTestContext(t, http.MethodPut, "/api/notifications/1/read", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, handler.MarkAsRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	count, err := repo.GetUnreadCount(1)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestMarkAsReadIsRecipientOnly(t *testing.T) {
	handler, repo := newNotificationFixture(t)
	require.NoError(t, repo.CreateNotification(&models.Notification{Type: models.NotificationComment, ActorID: 2, RecipientID: 1}))

	// Another user cannot flip someone else's notification.
	c, _ := newTestContext(t, http.MethodPut, "/api/notifications/1/read", "", 2)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.Equal(t, http.StatusNotFound, httpStatus(t, handler.MarkAsRead(c)))
}

func TestMarkAllAsRead(t *testing.T) {
	handler, repo := newNotificationFixture(t)
	require.NoError(t, repo.CreateNotification(&models.Notification{Type: models.NotificationComment, ActorID: 2, RecipientID: 1}))
	require.NoError(t, repo.CreateNotification(&models.Notification{Type: models.NotificationUpvote, ActorID: 2, RecipientID: 1}))

	c, rec := newTestContext(t, http.MethodPut, "/api/notifications/read-all", "", 1)
	require.NoError(t, handler.MarkAllAsRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	count, err := repo.GetUnreadCount(1)
	require.NoError(t, err)
	require.Zero(t, count)
}
