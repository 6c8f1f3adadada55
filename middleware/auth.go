package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kartify/kartify-backend-go/httperr"
	"github.com/kartify/kartify-backend-go/models"
	"github.com/kartify/kartify-backend-go/utils"
)

// UserContextKey is where Authenticate stores the resolved user in the echo
// context.
const UserContextKey = "user"

// UserLookup resolves a user id to its record. The routes wire it to the
// users collection; tests stub it.
type UserLookup func(ctx context.Context, id primitive.ObjectID) (*models.User, error)

// Authenticate extracts the session token from the token cookie (or a Bearer
// header), verifies it, resolves the subject to a user, and stores the user
// in the request context. Runs before AuthorizeRoles wherever both apply.
func Authenticate(lookup UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := tokenFromRequest(c)
			if tokenString == "" {
				return httperr.Unauthenticated("please login to access this resource")
			}

			claims, err := utils.ValidateJWT(tokenString)
			if err != nil {
				// jwt validation errors carry the expired/invalid
				// distinction for the central translator
				return err
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				return httperr.InvalidToken("session token is invalid, please login again")
			}

			user, err := lookup(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return httperr.Unauthenticated("the user belonging to this token no longer exists")
				}
				return err
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// AuthorizeRoles rejects authenticated users whose role is not in the
// allow-list. Pure predicate, no I/O.
func AuthorizeRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return httperr.Unauthenticated("please login to access this resource")
			}

			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}

			return httperr.Forbidden(fmt.Sprintf("role: %s is not allowed to access this resource", user.Role))
		}
	}
}

// CurrentUser returns the authenticated user stored by Authenticate, or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(UserContextKey).(*models.User)
	return user
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
