// internal/app/features/profile/handler.go
package profile

import (
	"context"

	uierrors "github.com/dalemusser/nutrihub/internal/app/features/errors"
	"github.com/dalemusser/nutrihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Profiles reads and writes the profile fields on a user record.
type Profiles interface {
	Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error)
	Save(ctx context.Context, userID primitive.ObjectID, p models.UserProfile) error
}

// Users is the slice of the user store the password section needs.
type Users interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// Handler owns the onboarding and edit-profile forms.
type Handler struct {
	Profiles Profiles
	Users    Users
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(profiles Profiles, users Users, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profiles,
		Users:    users,
		Log:      logger,
		ErrLog:   errLog,
	}
}
