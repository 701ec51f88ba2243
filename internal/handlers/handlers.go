package handlers

import (
	"github.com/debatify/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated actor's ID, or 0 for
// anonymous requests.
func getUserIDFromContext(c echo.Context) uint {
	return middleware.UserID(c)
}
