package middleware

import (
	"net/http"
	"strings"

	"github.com/debatify/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

// JWTAuth checks for a valid bearer token and stores the actor's user
// ID in the request context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseBearerToken(c, secret)
			if err != nil {
				return err
			}
			c.Set(userIDKey, claims.UserID)
			return next(c)
		}
	}
}

// OptionalJWTAuth resolves the actor when a valid token is present but
// lets anonymous requests through. Single-item reads use it to compute
// the isBookmarked flag without requiring login.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, err := parseBearerToken(c, secret); err == nil {
				c.Set(userIDKey, claims.UserID)
			}
			return next(c)
		}
	}
}

func parseBearerToken(c echo.Context, secret string) (*models.JwtCustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	return claims, nil
}

// UserID returns the authenticated actor's ID from the context, or 0
// for anonymous requests.
func UserID(c echo.Context) uint {
	if id, ok := c.Get(userIDKey).(uint); ok {
		return id
	}
	return 0
}
