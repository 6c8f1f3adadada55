package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kartify/kartify-backend-go/httperr"
	"github.com/kartify/kartify-backend-go/models"
	"github.com/kartify/kartify-backend-go/utils"
)

func newTestServer(lookup UserLookup) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler

	auth := Authenticate(lookup)
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "user": CurrentUser(c)})
	}, auth)
	e.GET("/admin-only", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, auth, AuthorizeRoles(models.RoleAdmin))

	return e
}

func staticLookup(user *models.User) UserLookup {
	return func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
		if user == nil || user.ID != id {
			return nil, mongo.ErrNoDocuments
		}
		return user, nil
	}
}

func doRequest(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthenticate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{ID: primitive.NewObjectID(), Name: "alice", Role: models.RoleUser}

	t.Run("missing token is unauthenticated", func(t *testing.T) {
		e := newTestServer(staticLookup(user))
		rec := doRequest(e, "/me", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "please login to access this resource", body["message"])
	})

	t.Run("valid cookie token resolves the user", func(t *testing.T) {
		token, err := utils.GenerateJWT(user.ID.Hex())
		require.NoError(t, err)

		e := newTestServer(staticLookup(user))
		rec := doRequest(e, "/me", token)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer header is accepted without a cookie", func(t *testing.T) {
		token, err := utils.GenerateJWT(user.ID.Hex())
		require.NoError(t, err)

		e := newTestServer(staticLookup(user))
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("expired token maps to the expired message", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &utils.Claims{
			UserID: user.ID.Hex(),
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().Add(-time.Minute).Unix(),
			},
		})
		tokenString, err := expired.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		e := newTestServer(staticLookup(user))
		rec := doRequest(e, "/me", tokenString)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "session token is expired, please login again", body["message"])
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		e := newTestServer(staticLookup(user))
		rec := doRequest(e, "/me", "not-a-token")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token for a deleted user is rejected", func(t *testing.T) {
		token, err := utils.GenerateJWT(primitive.NewObjectID().Hex())
		require.NoError(t, err)

		e := newTestServer(staticLookup(user))
		rec := doRequest(e, "/me", token)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "the user belonging to this token no longer exists", body["message"])
	})
}

func TestAuthorizeRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("plain user is forbidden from admin routes", func(t *testing.T) {
		user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
		token, err := utils.GenerateJWT(user.ID.Hex())
		require.NoError(t, err)

		e := newTestServer(staticLookup(user))
		rec := doRequest(e, "/admin-only", token)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "role: user is not allowed to access this resource", body["message"])
	})

	t.Run("admin passes", func(t *testing.T) {
		admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
		token, err := utils.GenerateJWT(admin.ID.Hex())
		require.NoError(t, err)

		e := newTestServer(staticLookup(admin))
		rec := doRequest(e, "/admin-only", token)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
