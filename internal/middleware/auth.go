// Package middleware provides the request processing shared by handlers:
// bearer authentication, role gating, Redis response caching and rate
// limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/expomatch/server/internal/utils"
)

// IdentityKey is the context key the verified claims live under. Exported
// so tests can inject an identity without minting a token.
const IdentityKey = "identity"

// Auth validates the Authorization bearer token and stores the verified
// claims in the request context for handlers and later middleware.
//
// Authorization decisions downstream key off the role embedded in the token
// at login time, not a fresh database read: a changed role takes effect
// only after the user logs in again.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(IdentityKey, claims)
			return next(c)
		}
	}
}

// Identity returns the verified claims stored by Auth. The zero value is
// returned on unauthenticated routes.
func Identity(c echo.Context) utils.Claims {
	if v, ok := c.Get(IdentityKey).(utils.Claims); ok {
		return v
	}
	return utils.Claims{}
}
