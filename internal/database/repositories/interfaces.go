package repositories

import (
	"context"

	"github.com/mindwell-care/mindwell-backend-go/internal/database/models"
)

// UserRepository defines user data access methods
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Delete(ctx context.Context, id int) error
}

// ConsentRepository defines language consent data access methods.
// Get returns nil (not an error) when no record exists; Upsert
// replaces the full row atomically.
type ConsentRepository interface {
	Get(ctx context.Context, userID int) (*models.LanguageConsent, error)
	Upsert(ctx context.Context, consent *models.LanguageConsent) error
}
