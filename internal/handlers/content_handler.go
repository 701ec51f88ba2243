package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/debatify/backend/internal/engagement"
	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/repositories"
	"github.com/debatify/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

const maxAttachments = 10

// ContentHandler serves one content kind (discussion, debate or blog).
// All three kinds share this handler; the kind is bound at route
// registration.
type ContentHandler struct {
	kind                   models.Kind
	engine                 *engagement.Engine
	contentRepository      repositories.ContentRepository
	userRepository         repositories.UserRepository
	followRepository       repositories.FollowRepository
	notificationRepository repositories.NotificationRepository
	uploader               storage.Uploader
}

// NewContentHandler creates a ContentHandler for the given kind
func NewContentHandler(
	kind models.Kind,
	engine *engagement.Engine,
	contentRepo repositories.ContentRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	notifRepo repositories.NotificationRepository,
	uploader storage.Uploader,
) *ContentHandler {
	return &ContentHandler{
		kind:                   kind,
		engine:                 engine,
		contentRepository:      contentRepo,
		userRepository:         userRepo,
		followRepository:       followRepo,
		notificationRepository: notifRepo,
		uploader:               uploader,
	}
}

// RegisterContentRoutes registers the kind's routes on the group.
// Reads are public (single-item reads resolve the actor when a token
// is present); mutations require authentication.
func (h *ContentHandler) RegisterContentRoutes(g *echo.Group, authMW, optionalAuthMW echo.MiddlewareFunc) {
	g.POST("", h.Create, authMW)
	g.GET("", h.List)
	g.GET("/following", h.ListFollowing, authMW)
	g.GET("/bookmarks/user", h.ListBookmarked, authMW)
	g.GET("/:id", h.GetByID, optionalAuthMW)
	g.DELETE("/:id", h.Delete, authMW)
	g.POST("/:id/upvote", h.Upvote, authMW)
	g.POST("/:id/downvote", h.Downvote, authMW)
	g.POST("/:id/bookmark", h.Bookmark, authMW)
	g.POST("/:id/comment", h.Comment, authMW)
	g.POST("/:id/comment/:commentId/like", h.LikeComment, authMW)
}

// ContentResponse is a content aggregate enriched with its author
type ContentResponse struct {
	models.Content
	Author models.UserCompact `json:"author"`
}

// ContentDetailResponse adds the viewer-specific fields returned by
// single-item reads
type ContentDetailResponse struct {
	ContentResponse
	IsBookmarked   bool   `json:"isBookmarked"`
	ViewsFormatted string `json:"viewsFormatted"`
}

// Create stores a new content aggregate. Blogs accept multipart
// uploads; attachments are stored via the uploader and referenced by
// URL.
func (h *ContentHandler) Create(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateContentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fileURLs, err := h.storeAttachments(c)
	if err != nil {
		return err
	}

	passcode := ""
	if req.IsPrivate {
		passcode = req.Passcode
	}

	content := &models.Content{
		Kind:      h.kind,
		Title:     req.Title,
		Body:      req.Body,
		Category:  req.Category,
		FileURLs:  fileURLs,
		AuthorID:  currentUserID,
		IsPrivate: req.IsPrivate,
		Passcode:  passcode,
	}

	if err := h.contentRepository.Create(c.Request().Context(), content); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, h.enrichOne(*content))
}

// storeAttachments uploads multipart files on blog creation. The other
// kinds are JSON-only.
func (h *ContentHandler) storeAttachments(c echo.Context) ([]string, error) {
	if h.kind != models.KindBlog {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil // plain JSON body, no attachments
	}

	files := form.File["files"]
	if len(files) > maxAttachments {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Too many attachments")
	}

	var urls []string
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid attachment")
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid attachment")
		}
		url, err := h.uploader.Upload(fh.Filename, data)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, "Attachment upload failed")
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// List returns every aggregate of the kind, newest first
func (h *ContentHandler) List(c echo.Context) error {
	items, err := h.contentRepository.ListAll(c.Request().Context(), h.kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.enrich(items))
}

// ListFollowing returns public aggregates authored by users the actor
// follows
func (h *ContentHandler) ListFollowing(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	followingIDs, err := h.followRepository.GetFollowingIDs(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items, err := h.contentRepository.ListByAuthors(c.Request().Context(), h.kind, followingIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.enrich(items))
}

// ListBookmarked returns the actor's bookmarked aggregates of the kind
func (h *ContentHandler) ListBookmarked(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	items, err := h.contentRepository.ListBookmarkedBy(c.Request().Context(), h.kind, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.enrich(items))
}

// GetByID returns a single aggregate. Private items require the exact
// passcode regardless of identity; a poll read never counts a view.
func (h *ContentHandler) GetByID(c echo.Context) error {
	poll := c.QueryParam("poll") != ""
	passcode := c.QueryParam("passcode")

	content, err := h.engine.View(c.Request().Context(), h.kind, c.Param("id"), poll, passcode)
	if err != nil {
		return contentError(err)
	}

	currentUserID := getUserIDFromContext(c)
	resp := ContentDetailResponse{
		ContentResponse: h.enrichOne(*content),
		ViewsFormatted:  engagement.FormatViews(content.Views),
	}
	if currentUserID != 0 {
		for _, id := range content.BookmarkedBy {
			if id == currentUserID {
				resp.IsBookmarked = true
				break
			}
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete removes an aggregate (author only) and cascades its
// notifications so none outlives the item
func (h *ContentHandler) Delete(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id := c.Param("id")
	content, err := h.contentRepository.GetByID(c.Request().Context(), h.kind, id)
	if err != nil {
		return contentError(err)
	}

	if content.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own content")
	}

	if err := h.contentRepository.Delete(c.Request().Context(), h.kind, id); err != nil {
		return contentError(err)
	}
	if err := h.notificationRepository.DeleteByTargetID(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted successfully"})
}

// Upvote applies the upvote transition and returns the counters
func (h *ContentHandler) Upvote(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	_, result, err := h.engine.Upvote(c.Request().Context(), h.kind, c.Param("id"), currentUserID)
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Downvote applies the downvote transition and returns the counters
func (h *ContentHandler) Downvote(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	_, result, err := h.engine.Downvote(c.Request().Context(), h.kind, c.Param("id"), currentUserID)
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Bookmark toggles the actor's bookmark
func (h *ContentHandler) Bookmark(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	result, err := h.engine.Bookmark(c.Request().Context(), h.kind, c.Param("id"), currentUserID)
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Comment appends a comment and returns the updated aggregate
func (h *ContentHandler) Comment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	content, err := h.engine.Comment(c.Request().Context(), h.kind, c.Param("id"), currentUserID, req.Text, req.Stance)
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, h.enrichOne(*content))
}

// LikeComment toggles the actor's like on an embedded comment
func (h *ContentHandler) LikeComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	result, err := h.engine.LikeComment(c.Request().Context(), h.kind, c.Param("id"), c.Param("commentId"), currentUserID)
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *ContentHandler) enrich(items []models.Content) []ContentResponse {
	responses := make([]ContentResponse, len(items))
	authorCache := make(map[uint]models.UserCompact)
	for i, item := range items {
		responses[i] = ContentResponse{Content: item}
		if author, ok := authorCache[item.AuthorID]; ok {
			responses[i].Author = author
			continue
		}
		if user, err := h.userRepository.GetUserByID(item.AuthorID); err == nil {
			compact := user.ToCompact()
			authorCache[item.AuthorID] = compact
			responses[i].Author = compact
		}
	}
	return responses
}

func (h *ContentHandler) enrichOne(item models.Content) ContentResponse {
	resp := ContentResponse{Content: item}
	if user, err := h.userRepository.GetUserByID(item.AuthorID); err == nil {
		resp.Author = user.ToCompact()
	}
	return resp
}

// contentError maps engine and repository failures to HTTP statuses
func contentError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrInvalidContentID),
		errors.Is(err, engagement.ErrInvalidCommentID),
		errors.Is(err, engagement.ErrInvalidStance):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrContentNotFound),
		errors.Is(err, engagement.ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, engagement.ErrAccessDenied):
		return echo.NewHTTPError(http.StatusUnauthorized, "Passcode required or incorrect")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
