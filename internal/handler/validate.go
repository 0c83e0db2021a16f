// Package handler contains the HTTP endpoints. Each handler binds an
// explicit request struct, validates it at the boundary, runs repository
// calls under a short timeout and maps sentinel errors to HTTP statuses.
// Unexpected failures are logged and surfaced as a generic 500 message.
package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// dbTimeout bounds every database call issued from a handler.
const dbTimeout = 5 * time.Second

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// validationMessage turns the first failed rule into a client-facing
// message; the full error never leaves the server.
func validationMessage(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", field)
		case "email":
			return fmt.Sprintf("%s must be a valid email address", field)
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
		case "datetime":
			return fmt.Sprintf("%s must be formatted as %s", field, fe.Param())
		case "min", "gte":
			return fmt.Sprintf("%s is too small", field)
		}
		return fmt.Sprintf("%s is invalid", field)
	}
	return "invalid request"
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
