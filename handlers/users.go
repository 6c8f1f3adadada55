package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kartify/kartify-backend-go/config"
	"github.com/kartify/kartify-backend-go/database"
	"github.com/kartify/kartify-backend-go/httperr"
	"github.com/kartify/kartify-backend-go/middleware"
	"github.com/kartify/kartify-backend-go/models"
	"github.com/kartify/kartify-backend-go/utils"
)

type registerInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func RegisterUser(c echo.Context) error {
	var input registerInput
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	ctx := c.Request().Context()
	collection := database.DB.Collection("users")

	if err := collection.FindOne(ctx, bson.M{"email": input.Email}).Err(); err == nil {
		return httperr.ValidationFailed("email already registered")
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Email:     input.Email,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}
	if err := user.SetPassword(input.Password); err != nil {
		return err
	}

	// The unique index on email backstops the check above; a duplicate-key
	// error is translated to a 400 centrally.
	if _, err := collection.InsertOne(ctx, user); err != nil {
		return err
	}

	return sendToken(c, &user, http.StatusCreated)
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func LoginUser(c echo.Context) error {
	var input loginInput
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if input.Email == "" || input.Password == "" {
		return httperr.ValidationFailed("please enter email and password")
	}

	var user models.User
	err := database.DB.Collection("users").FindOne(c.Request().Context(), bson.M{"email": input.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.Unauthenticated("invalid email or password")
		}
		return err
	}

	if !user.ComparePassword(input.Password) {
		return httperr.Unauthenticated("invalid email or password")
	}

	return sendToken(c, &user, http.StatusOK)
}

func LogoutUser(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Now(),
		HttpOnly: true,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out"})
}

func ForgotPassword(c echo.Context) error {
	var input struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	ctx := c.Request().Context()
	collection := database.DB.Collection("users")

	var user models.User
	err := collection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.NotFound("user not found")
		}
		return err
	}

	resetToken, err := user.NewResetPasswordToken()
	if err != nil {
		return err
	}

	_, err = collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"resetPasswordToken":  user.ResetPasswordToken,
		"resetPasswordExpire": user.ResetPasswordExpire,
	}})
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/users/reset-password/%s", c.Scheme(), c.Request().Host, resetToken)
	message := fmt.Sprintf("Your password reset token is:\n\n%s\n\nIf you have not requested this email, then please ignore it.", resetURL)

	if err := Mailer.Send(user.Email, "Kartify password recovery", message); err != nil {
		// a failed send must not leave a usable token behind
		_, clearErr := collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$unset": bson.M{
			"resetPasswordToken":  "",
			"resetPasswordExpire": "",
		}})
		if clearErr != nil {
			return clearErr
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("Email sent to %s successfully", user.Email),
	})
}

type resetPasswordInput struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

func ResetPassword(c echo.Context) error {
	var input resetPasswordInput
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}
	if input.Password != input.ConfirmPassword {
		return httperr.ValidationFailed("password does not match")
	}

	ctx := c.Request().Context()
	collection := database.DB.Collection("users")

	var user models.User
	err := collection.FindOne(ctx, bson.M{
		"resetPasswordToken":  models.HashResetToken(c.Param("token")),
		"resetPasswordExpire": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.ValidationFailed("reset password token is invalid or has been expired")
		}
		return err
	}

	if err := user.SetPassword(input.Password); err != nil {
		return err
	}

	_, err = collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"password": user.Password},
		"$unset": bson.M{
			"resetPasswordToken":  "",
			"resetPasswordExpire": "",
		},
	})
	if err != nil {
		return err
	}

	return sendToken(c, &user, http.StatusOK)
}

func GetUserProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    middleware.CurrentUser(c),
	})
}

func UpdateUserProfile(c echo.Context) error {
	var input struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	user := middleware.CurrentUser(c)
	_, err := database.DB.Collection("users").UpdateOne(
		c.Request().Context(),
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"name": input.Name, "email": input.Email}},
	)
	if err != nil {
		return err
	}

	user.Name = input.Name
	user.Email = input.Email
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

func UpdatePassword(c echo.Context) error {
	var input struct {
		OldPassword     string `json:"oldPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=8"`
		ConfirmPassword string `json:"confirmPassword" validate:"required"`
	}
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	user := middleware.CurrentUser(c)
	if !user.ComparePassword(input.OldPassword) {
		return httperr.ValidationFailed("old password is incorrect")
	}
	if input.NewPassword != input.ConfirmPassword {
		return httperr.ValidationFailed("password does not match")
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}

	_, err := database.DB.Collection("users").UpdateOne(
		c.Request().Context(),
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"password": user.Password}},
	)
	if err != nil {
		return err
	}

	return sendToken(c, user, http.StatusOK)
}

func GetAllUsers(c echo.Context) error {
	ctx := c.Request().Context()
	cursor, err := database.DB.Collection("users").Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "users": users})
}

func GetUser(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	var user models.User
	err = database.DB.Collection("users").FindOne(c.Request().Context(), bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.NotFound(fmt.Sprintf("user does not exist with id=%s", objID.Hex()))
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

func UpdateUserRole(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	var input struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
		Role  string `json:"role" validate:"required,oneof=user admin"`
	}
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	result, err := database.DB.Collection("users").UpdateOne(
		c.Request().Context(),
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"name": input.Name, "email": input.Email, "role": input.Role}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return httperr.NotFound(fmt.Sprintf("user does not exist with id=%s", objID.Hex()))
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func DeleteUser(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	result, err := database.DB.Collection("users").DeleteOne(c.Request().Context(), bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return httperr.NotFound(fmt.Sprintf("user does not exist with id=%s", objID.Hex()))
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "user deleted successfully"})
}

// sendToken issues a fresh session token, sets the HTTP-only cookie and
// responds with the user and token.
func sendToken(c echo.Context, user *models.User, status int) error {
	token, err := utils.GenerateJWT(user.ID.Hex())
	if err != nil {
		return err
	}

	hours := config.GetEnvInt("COOKIE_EXPIRES_HOURS", 72)
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(hours) * time.Hour),
		HttpOnly: true,
	})

	user.Password = ""
	return c.JSON(status, echo.Map{
		"success": true,
		"user":    user,
		"token":   token,
	})
}
