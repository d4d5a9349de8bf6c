// Package httperr is the single egress point for every failure in the
// request pipeline. It normalizes the closed set of known error shapes
// into one stable JSON contract and controls how much internal detail
// leaves the process depending on deployment mode.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/iamsahan/threadly/internal/apperror"
	"github.com/iamsahan/threadly/internal/token"
)

// errorResponse is the uniform error body every route produces. Stack and
// Err are populated only outside production mode.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Err     string `json:"error,omitempty"`
}

const mysqlDuplicateEntry = 1062

// key name inside "Duplicate entry 'x' for key 'users.email'"
var duplicateKeyPattern = regexp.MustCompile(`for key '([^']+)'`)

// NewHandler returns an echo.HTTPErrorHandler classifying the known error
// shapes: application errors pass through, validation failures flatten to
// one 400, MySQL duplicate keys become 400s naming the field, token
// failures become 401s and echo's own errors keep their status. Anything
// else gets the 500 default, masked in production.
func NewHandler(prod bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal Server Error"

		var (
			appErr  *apperror.Error
			valErr  *apperror.ValidationError
			dupErr  *mysql.MySQLError
			echoErr *echo.HTTPError
		)
		switch {
		case errors.As(err, &appErr):
			status, message = appErr.Status, appErr.Message
		case errors.As(err, &valErr):
			status, message = http.StatusBadRequest, valErr.Error()
		case errors.As(err, &dupErr) && dupErr.Number == mysqlDuplicateEntry:
			status, message = http.StatusBadRequest, duplicateMessage(dupErr)
		case errors.Is(err, token.ErrInvalidToken):
			status, message = http.StatusUnauthorized, "Invalid token signature. Please login again."
		case errors.Is(err, token.ErrExpiredToken):
			status, message = http.StatusUnauthorized, "Session expired, please login again."
		case errors.As(err, &echoErr):
			status = echoErr.Code
			if m, ok := echoErr.Message.(string); ok {
				message = m
			}
		}

		body := errorResponse{Success: false, Message: message}
		if status == http.StatusInternalServerError {
			c.Logger().Errorf("unhandled error on %s %s: %v",
				c.Request().Method, c.Request().URL.Path, err)
			if prod {
				// Unclassified server errors never leak detail to clients.
				body.Message = "Something went wrong on the server"
			}
		}
		if !prod {
			body.Err = err.Error()
			body.Stack = string(debug.Stack())
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			c.Logger().Errorf("failed to write error response: %v", werr)
		}
	}
}

// duplicateMessage names the conflicting column from a MySQL 1062 error.
// Key names look like "users.email" or "email"; the column is the last
// dot-separated segment.
func duplicateMessage(err *mysql.MySQLError) string {
	field := "value"
	if m := duplicateKeyPattern.FindStringSubmatch(err.Message); m != nil {
		key := m[1]
		if i := strings.LastIndex(key, "."); i >= 0 {
			key = key[i+1:]
		}
		if key != "" {
			field = key
		}
	}
	return fmt.Sprintf("This %s is already registered, please use another one.", field)
}
