package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/notify"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	handler     *UserHandler
	userRepo    *memUserRepo
	followRepo  *memFollowRepo
	contentRepo *memContentRepo
	notifRepo   *memNotificationRepo
	dispatcher  *notify.Dispatcher
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	userRepo := newMemUserRepo()
	followRepo := newMemFollowRepo(userRepo)
	contentRepo := newMemContentRepo()
	notifRepo := newMemNotificationRepo()
	dispatcher := notify.NewDispatcher(notifRepo)

	require.NoError(t, userRepo.CreateUser(&models.User{ID: 1, Username: "alice", Email: "alice@example.com", IsVerified: true}))
	require.NoError(t, userRepo.CreateUser(&models.User{ID: 2, Username: "bob", Email: "bob@example.com", IsVerified: true}))

	return &userFixture{
		handler:     NewUserHandler(userRepo, followRepo, contentRepo, dispatcher, &memUploader{}),
		userRepo:    userRepo,
		followRepo:  followRepo,
		contentRepo: contentRepo,
		notifRepo:   notifRepo,
		dispatcher:  dispatcher,
	}
}

func (f *userFixture) follow(t *testing.T, actorID uint, username string) (echoStatus int, err error) {
	t.Helper()
	c, rec := newTestContext(t, http.MethodPost, "/api/users/"+username+"/follow", "", actorID)
	c.SetParamNames("username")
	c.SetParamValues(username)
	if err := f.handler.Follow(c); err != nil {
		return httpStatus(t, err), err
	}
	return rec.Code, nil
}

func TestFollowAndNotify(t *testing.T) {
	f := newUserFixture(t)

	status, err := f.follow(t, 1, "bob")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	following, err := f.followRepo.IsFollowing(1, 2)
	require.NoError(t, err)
	require.True(t, following)

	f.dispatcher.Flush()
	notifications := f.notifRepo.all()
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationFollow, notifications[0].Type)
	require.Equal(t, uint(2), notifications[0].RecipientID)
	require.Contains(t, notifications[0].Message, "alice started following you")
}

func TestFollowRejectsSelf(t *testing.T) {
	f := newUserFixture(t)

	status, err := f.follow(t, 1, "alice")
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestFollowRejectsDuplicate(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.follow(t, 1, "bob")
	require.NoError(t, err)

	status, err := f.follow(t, 1, "bob")
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestFollowUnknownUser(t *testing.T) {
	f := newUserFixture(t)

	status, err := f.follow(t, 1, "nobody")
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, status)
}

func TestUnfollow(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.follow(t, 1, "bob")
	require.NoError(t, err)

	c, rec := newTestContext(t, http.MethodPost, "/api/users/bob/unfollow", "", 1)
	c.SetParamNames("username")
	c.SetParamValues("bob")
	require.NoError(t, f.handler.Unfollow(c))
	require.Equal(t, http.StatusOK, rec.Code)

	following, err := f.followRepo.IsFollowing(1, 2)
	require.NoError(t, err)
	require.False(t, following)
}

func TestUnfollowWithoutFollowFails(t *testing.T) {
	f := newUserFixture(t)

	c, _ := newTestContext(t, http.MethodPost, "/api/users/bob/unfollow", "", 1)
	c.SetParamNames("username")
	c.SetParamValues("bob")
	require.Equal(t, http.StatusBadRequest, httpStatus(t, f.handler.Unfollow(c)))
}

func TestProfileCountsAndFollowState(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.follow(t, 1, "bob")
	require.NoError(t, err)

	c, rec := newTestContext(t, http.MethodGet, "/api/users/bob", "", 1)
	c.SetParamNames("username")
	c.SetParamValues("bob")
	require.NoError(t, f.handler.Profile(c))

	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "bob", resp.Username)
	require.Equal(t, 1, resp.FollowerCount)
	require.Equal(t, 0, resp.FollowingCount)
	require.True(t, resp.IsFollowing)
}

func TestFollowersListing(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.follow(t, 1, "bob")
	require.NoError(t, err)

	c, rec := newTestContext(t, http.MethodGet, "/api/users/bob/followers", "", 0)
	c.SetParamNames("username")
	c.SetParamValues("bob")
	require.NoError(t, f.handler.Followers(c))

	var followers []models.UserCompact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &followers))
	require.Len(t, followers, 1)
	require.Equal(t, "alice", followers[0].Username)
}

func TestContentByUserHidesForeignPrivateItems(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, f.contentRepo.Create(ctx, &models.Content{Kind: models.KindBlog, Title: "public", AuthorID: 2}))
	require.NoError(t, f.contentRepo.Create(ctx, &models.Content{Kind: models.KindBlog, Title: "private", AuthorID: 2, IsPrivate: true, Passcode: "1"}))

	c, rec := newTestContext(t, http.MethodGet, "/api/users/bob/content/blog", "", 1)
	c.SetParamNames("username", "kind")
	c.SetParamValues("bob", "blog")
	require.NoError(t, f.handler.ContentByUser(c))

	var items []models.Content
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.Equal(t, "public", items[0].Title)

	// The author sees their own private items.
	c, rec = newTestContext(t, http.MethodGet, "/api/users/bob/content/blog", "", 2)
	c.SetParamNames("username", "kind")
	c.SetParamValues("bob", "blog")
	require.NoError(t, f.handler.ContentByUser(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
}

func TestContentByUserRejectsUnknownKind(t *testing.T) {
	f := newUserFixture(t)

	c, _ := newTestContext(t, http.MethodGet, "/api/users/bob/content/poems", "", 0)
	c.SetParamNames("username", "kind")
	c.SetParamValues("bob", "poems")
	require.Equal(t, http.StatusBadRequest, httpStatus(t, f.handler.ContentByUser(c)))
}

func TestUpdateBio(t *testing.T) {
	f := newUserFixture(t)

	c, rec := newTestContext(t, http.MethodPut, "/api/users/profile/bio", `{"bio":"gopher at large"}`, 1)
	require.NoError(t, f.handler.UpdateBio(c))
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := f.userRepo.GetUserByID(1)
	require.NoError(t, err)
	require.Equal(t, "gopher at large", user.Bio)
}

func TestSearchUsers(t *testing.T) {
	f := newUserFixture(t)

	c, rec := newTestContext(t, http.MethodGet, "/api/users/search?q=ali", "", 0)
	require.NoError(t, f.handler.Search(c))

	var results []models.UserCompact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	require.Equal(t, "alice", results[0].Username)

	c, _ = newTestContext(t, http.MethodGet, "/api/users/search", "", 0)
	require.Equal(t, http.StatusBadRequest, httpStatus(t, f.handler.Search(c)))
}
