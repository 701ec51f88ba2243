package handlers

import (
	"net/http"
	"sort"
	"sync"

	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// BookmarkHandler serves the merged bookmark feed across all content
// kinds
type BookmarkHandler struct {
	contentRepository repositories.ContentRepository
	userRepository    repositories.UserRepository
}

// NewBookmarkHandler creates a BookmarkHandler
func NewBookmarkHandler(contentRepo repositories.ContentRepository, userRepo repositories.UserRepository) *BookmarkHandler {
	return &BookmarkHandler{contentRepository: contentRepo, userRepository: userRepo}
}

// RegisterBookmarkRoutes registers the merged feed route
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	g.GET("", h.ListAll, authMW)
}

// ListAll fetches the actor's bookmarks for every kind in parallel and
// merges them newest first. Each item carries its kind so clients can
// route to the right detail view.
func (h *BookmarkHandler) ListAll(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	kinds := []models.Kind{models.KindDiscussion, models.KindDebate, models.KindBlog}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		merged   []models.Content
		firstErr error
	)
	for _, kind := range kinds {
		wg.Add(1)
		go func(kind models.Kind) {
			defer wg.Done()
			items, err := h.contentRepository.ListBookmarkedBy(ctx, kind, currentUserID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			merged = append(merged, items...)
		}(kind)
	}
	wg.Wait()

	if firstErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, firstErr.Error())
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	responses := make([]ContentResponse, len(merged))
	authorCache := make(map[uint]models.UserCompact)
	for i, item := range merged {
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
	return c.JSON(http.StatusOK, responses)
}
