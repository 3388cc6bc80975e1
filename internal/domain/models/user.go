// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account document in the users collection. The profile fields
// are stored inline on the same document so a profile read is a projection
// of the user record.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	AuthMethod   string             `bson:"auth_method" json:"auth_method"` // password | google
	PasswordHash *string            `bson:"password_hash,omitempty" json:"-"`
	GoogleSub    *string            `bson:"google_sub,omitempty" json:"-"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"` // active | disabled

	Profile UserProfile `bson:",inline" json:"profile"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsDisabled reports whether the account has been switched off.
func (u *User) IsDisabled() bool {
	return u.Status == "disabled"
}
