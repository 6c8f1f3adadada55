package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const resetTokenTTL = 15 * time.Minute

type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name" validate:"required"`
	Email               string             `bson:"email" json:"email" validate:"required,email"`
	Password            string             `bson:"password,omitempty" json:"-"`
	Role                string             `bson:"role" json:"role"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire time.Time          `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}

// SetPassword hashes the plaintext password with bcrypt and stores the hash.
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ComparePassword reports whether the plaintext password matches the stored hash.
func (u *User) ComparePassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// NewResetPasswordToken generates a password-reset token, stores its sha256
// digest and expiry on the user, and returns the plaintext token for mailing.
func (u *User) NewResetPasswordToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	token := hex.EncodeToString(buf)
	u.ResetPasswordToken = HashResetToken(token)
	u.ResetPasswordExpire = time.Now().Add(resetTokenTTL)
	return token, nil
}

// HashResetToken returns the hex sha256 digest stored for a reset token.
func HashResetToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
