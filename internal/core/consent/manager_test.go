package consent

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/mindwell-care/mindwell-backend-go/internal/database/models"
	"github.com/mindwell-care/mindwell-backend-go/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryConsentRepo implements repositories.ConsentRepository in memory
type memoryConsentRepo struct {
	records map[int]*models.LanguageConsent
}

func newMemoryConsentRepo() *memoryConsentRepo {
	return &memoryConsentRepo{records: make(map[int]*models.LanguageConsent)}
}

func (r *memoryConsentRepo) Get(ctx context.Context, userID int) (*models.LanguageConsent, error) {
	record, ok := r.records[userID]
	if !ok {
		return nil, nil
	}
	copy := *record
	return &copy, nil
}

func (r *memoryConsentRepo) Upsert(ctx context.Context, consent *models.LanguageConsent) error {
	copy := *consent
	r.records[consent.UserID] = &copy
	return nil
}

func testManager() (*Manager, *memoryConsentRepo) {
	repo := newMemoryConsentRepo()
	registry := i18n.NewRegistry("en", nil)
	return NewManager(repo, registry, logrus.New()), repo
}

func TestStatusWithoutRecord(t *testing.T) {
	m, _ := testManager()

	status, err := m.Status(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, status.ConsentGiven)
	assert.Empty(t, status.PreferredLocale)
	assert.Empty(t, status.LocaleSource)
}

func TestRecordAndStatus(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()

	status, err := m.Record(ctx, 7, true, "ar", "manual", map[string]interface{}{"prompted": true})
	require.NoError(t, err)
	assert.True(t, status.ConsentGiven)
	assert.Equal(t, "ar", status.PreferredLocale)

	read, err := m.Status(ctx, 7)
	require.NoError(t, err)
	assert.True(t, read.ConsentGiven)
	assert.Equal(t, "ar", read.PreferredLocale)
	assert.Equal(t, "manual", read.LocaleSource)
	assert.Equal(t, map[string]interface{}{"prompted": true}, read.ConsentData)
}

func TestRecordRejectsUnsupportedLocale(t *testing.T) {
	m, repo := testManager()

	_, err := m.Record(context.Background(), 7, true, "xx", "manual", nil)
	require.Error(t, err)
	assert.True(t, errors.IsAppError(err))
	assert.Empty(t, repo.records)
}

func TestRecordWithoutConsentClearsPreference(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()

	_, err := m.Record(ctx, 7, true, "fr", "manual", nil)
	require.NoError(t, err)

	// Withdrawing consent replaces the full record; the preference goes
	status, err := m.Record(ctx, 7, false, "fr", "manual", nil)
	require.NoError(t, err)
	assert.False(t, status.ConsentGiven)
	assert.Empty(t, status.PreferredLocale)

	read, err := m.Status(ctx, 7)
	require.NoError(t, err)
	assert.False(t, read.ConsentGiven)
	assert.Empty(t, read.PreferredLocale)
}

func TestRecordReplacesFullRow(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()

	_, err := m.Record(ctx, 7, true, "fr", "manual", map[string]interface{}{"v": "1"})
	require.NoError(t, err)

	// The second record carries no metadata; none survives
	_, err = m.Record(ctx, 7, true, "ar", "ip", nil)
	require.NoError(t, err)

	read, err := m.Status(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "ar", read.PreferredLocale)
	assert.Equal(t, "ip", read.LocaleSource)
	assert.Nil(t, read.ConsentData)
}

func TestStatusToleratesMalformedMetadata(t *testing.T) {
	m, repo := testManager()

	repo.records[9] = &models.LanguageConsent{
		UserID:       9,
		ConsentGiven: true,
		ConsentData:  sql.NullString{String: "{broken", Valid: true},
	}

	status, err := m.Status(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, status.ConsentGiven)
	assert.Nil(t, status.ConsentData)
}

func TestLocaleWithConsent(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()

	// No record means consent required
	_, err := m.LocaleWithConsent(ctx, 1)
	assert.Equal(t, errors.ErrConsentRequired, err)

	// Consent with a preference returns it
	_, err = m.Record(ctx, 1, true, "fr", "manual", nil)
	require.NoError(t, err)
	locale, err := m.LocaleWithConsent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "fr", locale)

	// Consent without a preference returns the default
	_, err = m.Record(ctx, 2, true, "", "manual", nil)
	require.NoError(t, err)
	locale, err = m.LocaleWithConsent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "en", locale)
}
