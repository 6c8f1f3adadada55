package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	user := User{}
	require.NoError(t, user.SetPassword("correct horse battery"))

	assert.NotEqual(t, "correct horse battery", user.Password)
	assert.True(t, user.ComparePassword("correct horse battery"))
	assert.False(t, user.ComparePassword("wrong password"))
}

func TestNewResetPasswordToken(t *testing.T) {
	user := User{}
	token, err := user.NewResetPasswordToken()
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.NotEqual(t, token, user.ResetPasswordToken, "plaintext token must not be stored")
	assert.Equal(t, HashResetToken(token), user.ResetPasswordToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), user.ResetPasswordExpire, time.Minute)
}

func TestResetTokensAreUnique(t *testing.T) {
	a := User{}
	b := User{}

	tokenA, err := a.NewResetPasswordToken()
	require.NoError(t, err)
	tokenB, err := b.NewResetPasswordToken()
	require.NoError(t, err)

	assert.NotEqual(t, tokenA, tokenB)
}
