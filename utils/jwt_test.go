package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT("64f1c0ffee0000000000abcd")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "64f1c0ffee0000000000abcd", claims.UserID)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateJWT("64f1c0ffee0000000000abcd")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "different-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "64f1c0ffee0000000000abcd",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	})
	tokenString, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateJWT(tokenString)
	require.Error(t, err)

	validationErr, ok := err.(*jwt.ValidationError)
	require.True(t, ok)
	assert.NotZero(t, validationErr.Errors&jwt.ValidationErrorExpired)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}
