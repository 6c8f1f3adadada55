package handlers

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kartify/kartify-backend-go/utils"
)

// Mailer delivers outbound mail for the password-reset flow. main wires the
// real implementation; tests may swap it.
var Mailer utils.Mailer = utils.LogMailer{}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// parseObjectID normalizes every malformed-id error to ErrInvalidHex so the
// central translator maps it to a single 400 response.
func parseObjectID(hex string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, primitive.ErrInvalidHex
	}
	return objID, nil
}
