package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/repositories"
	"github.com/debatify/backend/validators"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// In-memory doubles for the repository interfaces. They keep just
// enough behavior for handler assertions; persistence details are
// covered by the real implementations.

type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *memUserRepo) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	} else if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetUserByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetUserByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetUserByIdentifier(identifier string) (*models.User, error) {
	if u, err := r.GetUserByEmail(identifier); err == nil {
		return u, nil
	}
	return r.GetUserByUsername(identifier)
}

func (r *memUserRepo) UpdateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) MarkVerified(email string) error {
	u, err := r.GetUserByEmail(email)
	if err != nil {
		return err
	}
	u.IsVerified = true
	return nil
}

func (r *memUserRepo) UpdatePassword(email, hashedPassword string) error {
	u, err := r.GetUserByEmail(email)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

func (r *memUserRepo) SearchUsers(query string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	q := strings.ToLower(query)
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(u.Email, q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type memOtpRepo struct {
	mu   sync.Mutex
	otps map[string]*models.Otp // keyed by email, newest only
}

func newMemOtpRepo() *memOtpRepo {
	return &memOtpRepo{otps: make(map[string]*models.Otp)}
}

func (r *memOtpRepo) ReplaceForEmail(otp *models.Otp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp.Email = strings.ToLower(otp.Email)
	r.otps[otp.Email] = otp
	return nil
}

func (r *memOtpRepo) FindByEmailAndCode(email, code string) (*models.Otp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp, ok := r.otps[strings.ToLower(email)]
	if !ok || otp.Code != code {
		return nil, gorm.ErrRecordNotFound
	}
	return otp, nil
}

func (r *memOtpRepo) DeleteByEmail(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.otps, strings.ToLower(email))
	return nil
}

func (r *memOtpRepo) DeleteExpired(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, otp := range r.otps {
		if otp.Expired(now) {
			delete(r.otps, email)
		}
	}
	return nil
}

func (r *memOtpRepo) current(email string) *models.Otp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.otps[strings.ToLower(email)]
}

type memFollowRepo struct {
	mu    sync.Mutex
	users *memUserRepo
	edges map[[2]uint]bool
}

func newMemFollowRepo(users *memUserRepo) *memFollowRepo {
	return &memFollowRepo{users: users, edges: make(map[[2]uint]bool)}
}

func (r *memFollowRepo) CreateFollow(follow *models.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]uint{follow.FollowerID, follow.FollowingID}
	if r.edges[key] {
		return errors.New("duplicate follow")
	}
	r.edges[key] = true
	return nil
}

func (r *memFollowRepo) DeleteFollow(followerID, followingID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]uint{followerID, followingID}
	if !r.edges[key] {
		return errors.New("follow relationship not found")
	}
	delete(r.edges, key)
	return nil
}

func (r *memFollowRepo) IsFollowing(followerID, followingID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edges[[2]uint{followerID, followingID}], nil
}

func (r *memFollowRepo) GetFollowers(userID uint) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for edge := range r.edges {
		if edge[1] == userID {
			if u, err := r.users.GetUserByID(edge[0]); err == nil {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (r *memFollowRepo) GetFollowing(userID uint) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for edge := range r.edges {
		if edge[0] == userID {
			if u, err := r.users.GetUserByID(edge[1]); err == nil {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (r *memFollowRepo) GetFollowingIDs(userID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uint
	for edge := range r.edges {
		if edge[0] == userID {
			out = append(out, edge[1])
		}
	}
	return out, nil
}

type memContentRepo struct {
	mu    sync.Mutex
	items map[string]*models.Content
}

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{items: make(map[string]*models.Content)}
}

func (r *memContentRepo) Create(_ context.Context, content *models.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if content.ID.IsZero() {
		content.ID = primitive.NewObjectID()
	}
	if content.CreatedAt.IsZero() {
		content.CreatedAt = time.Now()
	}
	if content.Comments == nil {
		content.Comments = []models.Comment{}
	}
	stored := *content
	r.items[content.ID.Hex()] = &stored
	return nil
}

func (r *memContentRepo) GetByID(_ context.Context, _ models.Kind, id string) (*models.Content, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repositories.ErrInvalidContentID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrContentNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memContentRepo) Replace(_ context.Context, content *models.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[content.ID.Hex()]; !ok {
		return repositories.ErrContentNotFound
	}
	stored := *content
	r.items[content.ID.Hex()] = &stored
	return nil
}

func (r *memContentRepo) Delete(_ context.Context, _ models.Kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrContentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memContentRepo) IncrementViews(_ context.Context, _ models.Kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return repositories.ErrContentNotFound
	}
	item.Views++
	return nil
}

func (r *memContentRepo) ListAll(_ context.Context, kind models.Kind) ([]models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Content
	for _, item := range r.items {
		if item.Kind == kind {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memContentRepo) ListByAuthor(_ context.Context, kind models.Kind, authorID uint) ([]models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Content
	for _, item := range r.items {
		if item.Kind == kind && item.AuthorID == authorID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memContentRepo) ListByAuthors(_ context.Context, kind models.Kind, authorIDs []uint) ([]models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Content
	for _, item := range r.items {
		if item.Kind != kind || item.IsPrivate {
			continue
		}
		for _, id := range authorIDs {
			if item.AuthorID == id {
				out = append(out, *item)
				break
			}
		}
	}
	return out, nil
}

func (r *memContentRepo) ListBookmarkedBy(_ context.Context, kind models.Kind, userID uint) ([]models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Content
	for _, item := range r.items {
		if item.Kind != kind {
			continue
		}
		for _, id := range item.BookmarkedBy {
			if id == userID {
				out = append(out, *item)
				break
			}
		}
	}
	return out, nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	nextID        uint
	notifications []models.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{nextID: 1}
}

func (r *memNotificationRepo) CreateNotification(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextID
	r.nextID++
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *memNotificationRepo) GetByRecipientID(recipientID uint, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for i := len(r.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if r.notifications[i].RecipientID == recipientID {
			out = append(out, r.notifications[i])
		}
	}
	return out, nil
}

func (r *memNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkAsRead(notificationID, recipientID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == notificationID && r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memNotificationRepo) MarkAllAsRead(recipientID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) DeleteByTargetID(targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.TargetID != targetID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

func (r *memNotificationRepo) all() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.notifications...)
}

type memMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *memMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type memUploader struct {
	mu       sync.Mutex
	uploaded []string
}

func (u *memUploader) Upload(filename string, _ []byte) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	url := "/uploads/" + filename
	u.uploaded = append(u.uploaded, url)
	return url, nil
}

// newTestContext builds an Echo context for a JSON request. actorID 0
// leaves the request anonymous.
func newTestContext(t *testing.T, method, path, body string, actorID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actorID != 0 {
		c.Set("userID", actorID)
	}
	return c, rec
}

// httpStatus unwraps the status of an error returned by a handler.
func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	t.Fatalf("expected *echo.HTTPError, got %v", err)
	return 0
}
