// Package httperr defines the application error taxonomy and the centralized
// translator that turns any handler error into the uniform JSON error body.
package httperr

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// APIError carries an HTTP status alongside a user-facing message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func New(status int, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

func NotFound(message string) *APIError {
	return New(http.StatusNotFound, message)
}

func ValidationFailed(message string) *APIError {
	return New(http.StatusBadRequest, message)
}

func Unauthenticated(message string) *APIError {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *APIError {
	return New(http.StatusForbidden, message)
}

func InvalidToken(message string) *APIError {
	return New(http.StatusUnauthorized, message)
}

// Handler is the echo HTTPErrorHandler. Handlers never write error responses
// themselves; every returned error lands here and is normalized into
// {"success": false, "message": ...} with the mapped status code.
func Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal Server Error"

	var apiErr *APIError
	var echoErr *echo.HTTPError
	var jwtErr *jwt.ValidationError

	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Status
		message = apiErr.Message

	case errors.As(err, &echoErr):
		status = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(status)
		}

	case errors.Is(err, primitive.ErrInvalidHex):
		status = http.StatusBadRequest
		message = "resource not found, invalid id"

	case errors.Is(err, mongo.ErrNoDocuments):
		status = http.StatusNotFound
		message = "resource not found"

	case mongo.IsDuplicateKeyError(err):
		status = http.StatusBadRequest
		message = "duplicate value entered for a unique field"

	case errors.As(err, &jwtErr):
		status = http.StatusUnauthorized
		if jwtErr.Errors&jwt.ValidationErrorExpired != 0 {
			message = "session token is expired, please login again"
		} else {
			message = "session token is invalid, please login again"
		}
	}

	if status == http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	if writeErr := c.JSON(status, echo.Map{"success": false, "message": message}); writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
