package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Profile is a resident's room assignment, keyed by E.164 phone digits.
// A verified phone with no profile is not a usable identity.
type Profile struct {
	Phone    string `bson:"_id" json:"phone" validate:"required,numeric"`
	Name     string `bson:"name" json:"name" validate:"required"`
	Room     string `bson:"room" json:"room" validate:"required"`
	FCMToken string `bson:"fcmToken,omitempty" json:"fcmToken,omitempty"`
}

// ProfileFromFields maps a raw store document onto a Profile and validates it.
func ProfileFromFields(phone string, fields map[string]any) (Profile, error) {
	p := Profile{Phone: phone}
	p.Name, _ = fields["name"].(string)
	p.Room, _ = fields["room"].(string)
	p.FCMToken, _ = fields["fcmToken"].(string)

	if err := validate.Struct(&p); err != nil {
		return Profile{}, fmt.Errorf("invalid profile document: %w", err)
	}
	return p, nil
}

// Identity is the in-memory session identity created on successful
// authentication and destroyed on logout.
type Identity struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Room  string `json:"room"`
	Token string `json:"token"`
}
