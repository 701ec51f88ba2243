package handlers

import (
	"fmt"
	"net/http"

	"github.com/debatify/backend/internal/mailer"
	"github.com/debatify/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SupportHandler forwards user support requests to the support inbox
type SupportHandler struct {
	userRepository repositories.UserRepository
	mailSender     mailer.Sender
	supportEmail   string
}

// NewSupportHandler creates a SupportHandler
func NewSupportHandler(userRepo repositories.UserRepository, sender mailer.Sender, supportEmail string) *SupportHandler {
	return &SupportHandler{userRepository: userRepo, mailSender: sender, supportEmail: supportEmail}
}

// RegisterSupportRoutes registers the support contact route
func (h *SupportHandler) RegisterSupportRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	g.POST("", h.Contact, authMW)
}

// SupportRequest is the contact form payload
type SupportRequest struct {
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// Contact emails the support inbox on behalf of the authenticated user
func (h *SupportHandler) Contact(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req SupportRequest
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

	body := fmt.Sprintf("From: %s (%s)\n\n%s", user.Username, user.Email, req.Message)
	if err := h.mailSender.Send(h.supportEmail, "[Support] "+req.Subject, body); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send support request")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Support request sent"})
}
