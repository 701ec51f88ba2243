package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/notify"
	"github.com/debatify/backend/internal/repositories"
	"github.com/debatify/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// UserHandler serves profiles and the follow graph
type UserHandler struct {
	userRepository    repositories.UserRepository
	followRepository  repositories.FollowRepository
	contentRepository repositories.ContentRepository
	dispatcher        *notify.Dispatcher
	uploader          storage.Uploader
}

// NewUserHandler creates a UserHandler
func NewUserHandler(
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	contentRepo repositories.ContentRepository,
	dispatcher *notify.Dispatcher,
	uploader storage.Uploader,
) *UserHandler {
	return &UserHandler{
		userRepository:    userRepo,
		followRepository:  followRepo,
		contentRepository: contentRepo,
		dispatcher:        dispatcher,
		uploader:          uploader,
	}
}

// RegisterUserRoutes registers profile and follow routes on the group
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	g.GET("/me", h.Me, authMW)
	g.GET("/search", h.Search)
	g.GET("/:username", h.Profile)
	g.GET("/:username/followers", h.Followers)
	g.GET("/:username/following", h.Following)
	g.GET("/:username/content/:kind", h.ContentByUser)
	g.POST("/:username/follow", h.Follow, authMW)
	g.POST("/:username/unfollow", h.Unfollow, authMW)
	g.PUT("/profile/bio", h.UpdateBio, authMW)
	g.PUT("/profile/picture", h.UpdateProfilePicture, authMW)
}

// ProfileResponse is a public profile with its graph counters
type ProfileResponse struct {
	models.UserCompact
	IsVerified     bool `json:"isVerified"`
	FollowerCount  int  `json:"followerCount"`
	FollowingCount int  `json:"followingCount"`
	IsFollowing    bool `json:"isFollowing"`
}

// Me returns the authenticated user's own record
func (h *UserHandler) Me(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

// Profile returns a public profile by username
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	return c.JSON(http.StatusOK, h.buildProfile(user, getUserIDFromContext(c)))
}

func (h *UserHandler) buildProfile(user *models.User, viewerID uint) ProfileResponse {
	resp := ProfileResponse{
		UserCompact: user.ToCompact(),
		IsVerified:  user.IsVerified,
	}
	if followers, err := h.followRepository.GetFollowers(user.ID); err == nil {
		resp.FollowerCount = len(followers)
	}
	if following, err := h.followRepository.GetFollowing(user.ID); err == nil {
		resp.FollowingCount = len(following)
	}
	if viewerID != 0 && viewerID != user.ID {
		resp.IsFollowing, _ = h.followRepository.IsFollowing(viewerID, user.ID)
	}
	return resp
}

// Follow creates the directed follow edge and notifies the target
func (h *UserHandler) Follow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if target.ID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	if following, err := h.followRepository.IsFollowing(currentUserID, target.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	} else if following {
		return echo.NewHTTPError(http.StatusBadRequest, "Already following this user")
	}

	if err := h.followRepository.CreateFollow(&models.Follow{
		FollowerID:  currentUserID,
		FollowingID: target.ID,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if actor, err := h.userRepository.GetUserByID(currentUserID); err == nil {
		h.dispatcher.Dispatch(&models.Notification{
			Type:        models.NotificationFollow,
			ActorID:     currentUserID,
			RecipientID: target.ID,
			Message:     fmt.Sprintf("%s started following you", actor.Username),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Followed successfully"})
}

// Unfollow removes the directed follow edge and notifies the target
func (h *UserHandler) Unfollow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if target.ID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot unfollow yourself")
	}

	if err := h.followRepository.DeleteFollow(currentUserID, target.ID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Not following this user")
	}

	if actor, err := h.userRepository.GetUserByID(currentUserID); err == nil {
		h.dispatcher.Dispatch(&models.Notification{
			Type:        models.NotificationUnfollow,
			ActorID:     currentUserID,
			RecipientID: target.ID,
			Message:     fmt.Sprintf("%s unfollowed you", actor.Username),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Unfollowed successfully"})
}

// Followers lists the users following :username
func (h *UserHandler) Followers(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	followers, err := h.followRepository.GetFollowers(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, compactUsers(followers))
}

// Following lists the users :username follows
func (h *UserHandler) Following(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	following, err := h.followRepository.GetFollowing(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, compactUsers(following))
}

// ContentByUser lists one kind of content authored by :username
func (h *UserHandler) ContentByUser(c echo.Context) error {
	kind := models.Kind(c.Param("kind"))
	if !kind.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown content kind")
	}

	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	items, err := h.contentRepository.ListByAuthor(c.Request().Context(), kind, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// A viewer only sees another user's private items if they authored
	// them.
	currentUserID := getUserIDFromContext(c)
	visible := items[:0]
	for _, item := range items {
		if !item.IsPrivate || item.AuthorID == currentUserID {
			visible = append(visible, item)
		}
	}
	return c.JSON(http.StatusOK, visible)
}

// UpdateBio replaces the authenticated user's bio
func (h *UserHandler) UpdateBio(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateBioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	user.Bio = req.Bio
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfilePicture stores the uploaded image and records its URL
func (h *UserHandler) UpdateProfilePicture(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	fh, err := c.FormFile("picture")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Picture file missing")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid picture file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid picture file")
	}

	url, err := h.uploader.Upload(fh.Filename, data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Picture upload failed")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	user.ProfilePicture = url
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// Search finds users by a partial username or email match
func (h *UserHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query missing")
	}

	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, compactUsers(users))
}

func compactUsers(users []models.User) []models.UserCompact {
	compacts := make([]models.UserCompact, len(users))
	for i := range users {
		compacts[i] = users[i].ToCompact()
	}
	return compacts
}
