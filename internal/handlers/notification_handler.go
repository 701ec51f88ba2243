package handlers

import (
	"net/http"
	"strconv"

	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const notificationFeedLimit = 50

// NotificationHandler serves the authenticated user's notification feed
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo, userRepository: userRepo}
}

// RegisterNotificationRoutes registers the feed routes; all require
// authentication
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	g.Use(authMW)
	g.GET("", h.List)
	g.GET("/unread-count", h.UnreadCount)
	g.PUT("/:id/read", h.MarkAsRead)
	g.PUT("/read-all", h.MarkAllAsRead)
}

// NotificationResponse is a notification enriched with its actor
type NotificationResponse struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

// List returns the recipient's most recent notifications, newest first
func (h *NotificationHandler) List(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifications, err := h.notificationRepository.GetByRecipientID(currentUserID, notificationFeedLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	responses := make([]NotificationResponse, len(notifications))
	actorCache := make(map[uint]models.UserCompact)
	for i, n := range notifications {
		responses[i] = NotificationResponse{Notification: n}
		if actor, ok := actorCache[n.ActorID]; ok {
			responses[i].Actor = actor
			continue
		}
		if user, err := h.userRepository.GetUserByID(n.ActorID); err == nil {
			compact := user.ToCompact()
			actorCache[n.ActorID] = compact
			responses[i].Actor = compact
		}
	}
	return c.JSON(http.StatusOK, responses)
}

// UnreadCount returns how many notifications are still unread
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.GetUnreadCount(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"unreadCount": count})
}

// MarkAsRead marks a single notification read. Only the recipient can
// flip the flag.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationRepository.MarkAsRead(uint(id), currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// MarkAllAsRead marks every unread notification of the recipient read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.MarkAllAsRead(currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "All notifications marked as read"})
}
