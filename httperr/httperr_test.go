package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func translate(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	Handler(err, c)

	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "api error passes through",
			err:         NotFound("product not found"),
			wantStatus:  http.StatusNotFound,
			wantMessage: "product not found",
		},
		{
			name:        "forbidden keeps its message",
			err:         Forbidden("role: user is not allowed to access this resource"),
			wantStatus:  http.StatusForbidden,
			wantMessage: "role: user is not allowed to access this resource",
		},
		{
			name:        "echo http error is unwrapped",
			err:         echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"),
			wantStatus:  http.StatusMethodNotAllowed,
			wantMessage: "Method Not Allowed",
		},
		{
			name:        "invalid object id hex",
			err:         primitive.ErrInvalidHex,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "resource not found, invalid id",
		},
		{
			name:        "missing document",
			err:         mongo.ErrNoDocuments,
			wantStatus:  http.StatusNotFound,
			wantMessage: "resource not found",
		},
		{
			name: "duplicate key",
			err: mongo.WriteException{WriteErrors: []mongo.WriteError{
				{Code: 11000, Message: "E11000 duplicate key error"},
			}},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "duplicate value entered for a unique field",
		},
		{
			name:        "expired jwt",
			err:         &jwt.ValidationError{Errors: jwt.ValidationErrorExpired},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "session token is expired, please login again",
		},
		{
			name:        "malformed jwt",
			err:         &jwt.ValidationError{Errors: jwt.ValidationErrorMalformed},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "session token is invalid, please login again",
		},
		{
			name:        "unrecognized error defaults to 500 with generic message",
			err:         errors.New("connection reset by peer"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := translate(t, tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMessage, body["message"])
		})
	}
}

func TestHandlerSkipsCommittedResponses(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, c.JSON(http.StatusOK, echo.Map{"success": true}))
	Handler(errors.New("late failure"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
}
