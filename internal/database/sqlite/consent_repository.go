package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mindwell-care/mindwell-backend-go/internal/database/models"
	"github.com/mindwell-care/mindwell-backend-go/internal/database/repositories"
)

// ConsentRepository implements repositories.ConsentRepository
type ConsentRepository struct {
	db *sqlx.DB
}

// NewConsentRepository creates a new ConsentRepository
func NewConsentRepository(db *sqlx.DB) repositories.ConsentRepository {
	return &ConsentRepository{db: db}
}

// Get retrieves the consent record for a user, or nil when none exists
func (r *ConsentRepository) Get(ctx context.Context, userID int) (*models.LanguageConsent, error) {
	consent := &models.LanguageConsent{}
	err := r.db.GetContext(ctx, consent, `
		SELECT id, user_id, consent_given, preferred_locale, locale_source, consent_data, created_at, updated_at
		FROM language_consents
		WHERE user_id = ?
	`, userID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consent record: %w", err)
	}

	return consent, nil
}

// Upsert creates or fully replaces the consent record for a user.
// Last writer wins; partial merges are not supported.
func (r *ConsentRepository) Upsert(ctx context.Context, consent *models.LanguageConsent) error {
	consent.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO language_consents (user_id, consent_given, preferred_locale, locale_source, consent_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			consent_given = excluded.consent_given,
			preferred_locale = excluded.preferred_locale,
			locale_source = excluded.locale_source,
			consent_data = excluded.consent_data,
			updated_at = excluded.updated_at
	`,
		consent.UserID,
		consent.ConsentGiven,
		consent.PreferredLocale,
		consent.LocaleSource,
		consent.ConsentData,
		time.Now().UTC(),
		consent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert consent record: %w", err)
	}

	return nil
}
