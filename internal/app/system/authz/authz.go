// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/nutrihub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's display name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false. Callers can trust that ok=true means a signed-in
// user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// UserID returns the signed-in user's ObjectID, or NilObjectID.
func UserID(r *http.Request) primitive.ObjectID {
	_, id, _ := UserCtx(r)
	return id
}

// IsSignedIn reports whether the request carries a valid session user.
func IsSignedIn(r *http.Request) bool {
	_, _, ok := UserCtx(r)
	return ok
}
