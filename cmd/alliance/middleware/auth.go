package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
)

// ExtractUser extracts the X-User-ID header injected by the gateway and
// stores it in the request context. Identity is trusted at this layer; the
// gateway has already authenticated the session.
//
// Usage:
//
//	e := echo.New()
//	e.Use(middleware.ExtractUser())
//
// Accessing in handlers:
//
//	userID := middleware.GetUserID(c)
func ExtractUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get("X-User-ID")

			if userID != "" {
				c.Set(string(UserIDKey), userID)
			}

			return next(c)
		}
	}
}

// GetUserID retrieves the user ID from the request context.
// Returns empty string if not set.
func GetUserID(c echo.Context) string {
	userID := c.Get(string(UserIDKey))
	if userID == nil {
		return ""
	}
	return userID.(string)
}

// RequireUserID ensures a user ID exists in context.
// Returns an error response if not found.
func RequireUserID(c echo.Context) (string, error) {
	userID := GetUserID(c)
	if userID == "" {
		err := c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "unauthenticated",
				"message": "X-User-ID header is required",
			},
		})
		return "", err
	}
	return userID, nil
}
