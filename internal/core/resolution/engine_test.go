package resolution

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mindwell-care/mindwell-backend-go/internal/core/consent"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/localesession"
	"github.com/mindwell-care/mindwell-backend-go/internal/database/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryConsentRepo implements repositories.ConsentRepository in memory
type memoryConsentRepo struct {
	records map[int]*models.LanguageConsent
}

func (r *memoryConsentRepo) Get(ctx context.Context, userID int) (*models.LanguageConsent, error) {
	record, ok := r.records[userID]
	if !ok {
		return nil, nil
	}
	copy := *record
	return &copy, nil
}

func (r *memoryConsentRepo) Upsert(ctx context.Context, record *models.LanguageConsent) error {
	copy := *record
	r.records[record.UserID] = &copy
	return nil
}

type engineFixture struct {
	engine   *Engine
	sessions *localesession.Manager
	consent  *consent.Manager
}

func testEngine(t *testing.T) *engineFixture {
	t.Helper()

	// The device signal must not leak in from the host environment
	for _, env := range []string{"LANG", "LC_ALL", "LC_MESSAGES", "LANGUAGE"} {
		t.Setenv(env, "")
	}

	logger := logrus.New()
	registry := i18n.NewRegistry("en", []string{"en", "fr", "ar", "de"})
	catalog, err := i18n.NewCatalog(registry, t.TempDir(), logger)
	require.NoError(t, err)

	sessions := localesession.NewManager(registry, catalog, time.Hour, logger)
	consentMgr := consent.NewManager(&memoryConsentRepo{records: make(map[int]*models.LanguageConsent)}, registry, logger)

	return &engineFixture{
		engine:   NewEngine(registry, catalog, sessions, consentMgr, nil, logger),
		sessions: sessions,
		consent:  consentMgr,
	}
}

func TestResolveDefault(t *testing.T) {
	f := testEngine(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	resolved := f.engine.Resolve(context.Background(), r, 0)
	assert.Equal(t, Resolution{Locale: "en", Source: SourceDefault}, resolved)
}

func TestResolveBrowser(t *testing.T) {
	f := testEngine(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")

	resolved := f.engine.Resolve(context.Background(), r, 0)
	assert.Equal(t, Resolution{Locale: "fr", Source: SourceBrowser}, resolved)
}

func TestResolveQueryBeatsBrowser(t *testing.T) {
	f := testEngine(t)
	r := httptest.NewRequest(http.MethodGet, "/?locale=de", nil)
	r.Header.Set("Accept-Language", "fr")

	resolved := f.engine.Resolve(context.Background(), r, 0)
	assert.Equal(t, Resolution{Locale: "de", Source: SourceQuery}, resolved)
}

func TestResolveHeaderBeatsQuery(t *testing.T) {
	f := testEngine(t)
	r := httptest.NewRequest(http.MethodGet, "/?locale=de", nil)
	r.Header.Set("X-Locale", "ar")

	resolved := f.engine.Resolve(context.Background(), r, 0)
	assert.Equal(t, Resolution{Locale: "ar", Source: SourceHeader}, resolved)
}

func TestResolveUnsupportedOverridesIgnored(t *testing.T) {
	f := testEngine(t)
	r := httptest.NewRequest(http.MethodGet, "/?locale=xx", nil)
	r.Header.Set("X-Locale", "yy")
	r.Header.Set("Accept-Language", "fr")

	resolved := f.engine.Resolve(context.Background(), r, 0)
	assert.Equal(t, Resolution{Locale: "fr", Source: SourceBrowser}, resolved)
}

func TestResolveManualBeatsHeader(t *testing.T) {
	f := testEngine(t)
	ctx := context.Background()

	_, err := f.consent.Record(ctx, 7, true, "ar", "manual", nil)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Locale", "de")

	resolved := f.engine.Resolve(ctx, r, 7)
	assert.Equal(t, Resolution{Locale: "ar", Source: SourceManual}, resolved)
}

func TestResolveManualRequiresConsent(t *testing.T) {
	f := testEngine(t)
	ctx := context.Background()

	// A stored preference without consent never wins
	_, err := f.consent.Record(ctx, 7, false, "ar", "manual", nil)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "fr")

	resolved := f.engine.Resolve(ctx, r, 7)
	assert.Equal(t, Resolution{Locale: "fr", Source: SourceBrowser}, resolved)
}

func TestResolveSessionBeatsEverything(t *testing.T) {
	f := testEngine(t)
	ctx := context.Background()

	_, err := f.consent.Record(ctx, 7, true, "ar", "manual", nil)
	require.NoError(t, err)

	id := f.sessions.Create(7, "de")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: localesession.SessionCookie, Value: id})
	r.Header.Set("X-Locale", "fr")

	resolved := f.engine.Resolve(ctx, r, 7)
	assert.Equal(t, Resolution{Locale: "de", Source: SourceSession}, resolved)
}

func TestResolveExpiredSessionFallsThrough(t *testing.T) {
	f := testEngine(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: localesession.SessionCookie, Value: "gone"})
	r.Header.Set("Accept-Language", "fr")

	resolved := f.engine.Resolve(context.Background(), r, 0)
	assert.Equal(t, Resolution{Locale: "fr", Source: SourceBrowser}, resolved)
}

func TestDetectCandidates(t *testing.T) {
	f := testEngine(t)
	ctx := context.Background()

	_, err := f.consent.Record(ctx, 7, true, "ar", "manual", nil)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "fr")

	resolved, candidates := f.engine.Detect(ctx, r, 7)
	assert.Equal(t, Resolution{Locale: "ar", Source: SourceManual}, resolved)

	require.Len(t, candidates, 5)
	assert.Equal(t, Candidate{Source: SourceManual, Locale: "ar"}, candidates[0])
	assert.Equal(t, Candidate{Source: SourceBrowser, Locale: "fr"}, candidates[1])
	assert.Equal(t, Candidate{Source: SourceIP, Locale: ""}, candidates[2])
	assert.Equal(t, Candidate{Source: SourceDevice, Locale: ""}, candidates[3])
	assert.Equal(t, Candidate{Source: SourceDefault, Locale: "en"}, candidates[4])
}

func TestDetectFallsToDefault(t *testing.T) {
	f := testEngine(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	resolved, candidates := f.engine.Detect(context.Background(), r, 0)
	assert.Equal(t, Resolution{Locale: "en", Source: SourceDefault}, resolved)
	assert.Len(t, candidates, 5)
}
