package consent

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/mindwell-care/mindwell-backend-go/internal/database/models"
	"github.com/mindwell-care/mindwell-backend-go/internal/database/repositories"
	"github.com/mindwell-care/mindwell-backend-go/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Status is the consent state reported to callers. A user without a
// stored record gets the zero state, never a not-found error.
type Status struct {
	ConsentGiven    bool                   `json:"consent_given"`
	PreferredLocale string                 `json:"preferred_locale,omitempty"`
	LocaleSource    string                 `json:"locale_source,omitempty"`
	ConsentData     map[string]interface{} `json:"consent_data,omitempty"`
}

// Manager is the consent ledger: one durable record per user stating
// whether they consented to a non-default locale, which one, and how
// it was determined.
type Manager struct {
	repo     repositories.ConsentRepository
	registry *i18n.Registry
	logger   *logrus.Logger
}

// NewManager creates the consent manager
func NewManager(repo repositories.ConsentRepository, registry *i18n.Registry, logger *logrus.Logger) *Manager {
	return &Manager{repo: repo, registry: registry, logger: logger}
}

// Status returns the user's consent state, defaulting to all-false
// when no record exists.
func (m *Manager) Status(ctx context.Context, userID int) (*Status, error) {
	record, err := m.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read consent: %w", err)
	}
	if record == nil {
		return &Status{}, nil
	}

	status := &Status{
		ConsentGiven:    record.ConsentGiven,
		PreferredLocale: record.PreferredLocale.String,
		LocaleSource:    record.LocaleSource.String,
	}
	if record.ConsentData.Valid && record.ConsentData.String != "" {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(record.ConsentData.String), &data); err != nil {
			m.logger.WithError(err).WithField("user_id", userID).Warn("Malformed consent metadata, ignoring")
		} else {
			status.ConsentData = data
		}
	}
	return status, nil
}

// Record stores the user's consent decision, fully replacing any
// existing record. A preferred locale is only accepted together with
// consent and must be a registry member. The write is durable before
// the caller applies the locale anywhere.
func (m *Manager) Record(ctx context.Context, userID int, given bool, preferredLocale, source string, metadata map[string]interface{}) (*Status, error) {
	if preferredLocale != "" && !m.registry.Supported(preferredLocale) {
		return nil, errors.WithDetails(errors.ErrBadRequest,
			fmt.Sprintf("locale %s is not supported", preferredLocale))
	}
	if !given {
		// No consent means no stored preference
		preferredLocale = ""
	}

	record := &models.LanguageConsent{
		UserID:       userID,
		ConsentGiven: given,
	}
	if preferredLocale != "" {
		record.PreferredLocale = sql.NullString{String: preferredLocale, Valid: true}
	}
	if source != "" {
		record.LocaleSource = sql.NullString{String: source, Valid: true}
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode consent metadata: %w", err)
		}
		record.ConsentData = sql.NullString{String: string(raw), Valid: true}
	}

	if err := m.repo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record consent: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"consent_given": given,
		"locale":        preferredLocale,
		"source":        source,
	}).Info("Language consent recorded")

	return &Status{
		ConsentGiven:    given,
		PreferredLocale: preferredLocale,
		LocaleSource:    source,
		ConsentData:     metadata,
	}, nil
}

// LocaleWithConsent returns the user's consented locale. A user who
// has not consented gets ErrConsentRequired; a consented user without
// a stored preference gets the registry default.
func (m *Manager) LocaleWithConsent(ctx context.Context, userID int) (string, error) {
	status, err := m.Status(ctx, userID)
	if err != nil {
		return "", err
	}

	if status.ConsentGiven && status.PreferredLocale != "" {
		return status.PreferredLocale, nil
	}
	if !status.ConsentGiven {
		return "", errors.ErrConsentRequired
	}
	return m.registry.DefaultLocale(), nil
}
