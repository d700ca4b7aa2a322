package resolution

import (
	"context"
	"net/http"

	"github.com/mindwell-care/mindwell-backend-go/internal/core/consent"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/geolocation"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/localesession"
	"github.com/sirupsen/logrus"
)

// Source tags identify which signal produced a resolved locale.
const (
	SourceSession = "session"
	SourceManual  = "manual"
	SourceHeader  = "header"
	SourceQuery   = "query"
	SourceBrowser = "browser"
	SourceIP      = "ip"
	SourceDevice  = "device"
	SourceDefault = "default"
)

// Resolution is the outcome of locale resolution: a registry-validated
// locale and the signal that produced it.
type Resolution struct {
	Locale string `json:"locale"`
	Source string `json:"source"`
}

// Candidate is one diagnostic candidate from Detect.
type Candidate struct {
	Source string `json:"source"`
	Locale string `json:"locale"`
}

// Engine computes the effective locale for a request/user from the
// available signals. Resolution always terminates at the registry
// default; it can never fail.
type Engine struct {
	registry *i18n.Registry
	catalog  *i18n.Catalog
	sessions *localesession.Manager
	consent  *consent.Manager
	geo      *geolocation.Service
	logger   *logrus.Logger
}

// NewEngine creates the resolution engine
func NewEngine(registry *i18n.Registry, catalog *i18n.Catalog, sessions *localesession.Manager, consentMgr *consent.Manager, geo *geolocation.Service, logger *logrus.Logger) *Engine {
	return &Engine{
		registry: registry,
		catalog:  catalog,
		sessions: sessions,
		consent:  consentMgr,
		geo:      geo,
		logger:   logger,
	}
}

// Resolve computes the effective locale for a request using the
// canonical priority: session, stored consent, explicit header
// override, query override, Accept-Language, IP geolocation, device
// language, registry default. userID 0 means anonymous. A candidate
// only wins when it is a registry member.
func (e *Engine) Resolve(ctx context.Context, r *http.Request, userID int) Resolution {
	// An existing session is itself a prior resolution
	if cookie, err := r.Cookie(localesession.SessionCookie); err == nil && cookie.Value != "" {
		if session := e.sessions.Get(cookie.Value); session != nil {
			return Resolution{Locale: session.Locale, Source: SourceSession}
		}
	}

	// Stored preference, gated on consent
	if locale := e.manualLocale(ctx, userID); locale != "" {
		return Resolution{Locale: locale, Source: SourceManual}
	}

	if locale := r.Header.Get("X-Locale"); e.registry.Supported(locale) {
		return Resolution{Locale: locale, Source: SourceHeader}
	}

	if locale := r.URL.Query().Get("locale"); e.registry.Supported(locale) {
		return Resolution{Locale: locale, Source: SourceQuery}
	}

	if locale := e.registry.BrowserLocale(r.Header.Get("Accept-Language")); locale != "" {
		return Resolution{Locale: locale, Source: SourceBrowser}
	}

	if locale := e.ipLocale(r); locale != "" {
		return Resolution{Locale: locale, Source: SourceIP}
	}

	if locale := e.registry.DeviceLocale(); locale != "" {
		return Resolution{Locale: locale, Source: SourceDevice}
	}

	return Resolution{Locale: e.registry.DefaultLocale(), Source: SourceDefault}
}

// Detect returns the winning locale under the diagnostic priority
// (manual, browser, ip, device, default) together with every
// candidate's value, preserving per-source visibility.
func (e *Engine) Detect(ctx context.Context, r *http.Request, userID int) (Resolution, []Candidate) {
	candidates := []Candidate{
		{Source: SourceManual, Locale: e.manualLocale(ctx, userID)},
		{Source: SourceBrowser, Locale: e.registry.BrowserLocale(r.Header.Get("Accept-Language"))},
		{Source: SourceIP, Locale: e.ipLocale(r)},
		{Source: SourceDevice, Locale: e.registry.DeviceLocale()},
		{Source: SourceDefault, Locale: e.registry.DefaultLocale()},
	}

	for _, c := range candidates {
		if c.Locale != "" && e.registry.Supported(c.Locale) {
			return Resolution{Locale: c.Locale, Source: c.Source}, candidates
		}
	}
	// The default candidate always matches, but keep a terminal
	// fallback anyway.
	return Resolution{Locale: e.registry.DefaultLocale(), Source: SourceDefault}, candidates
}

// manualLocale returns the stored preference only when consent was
// given and the locale is supported; every other case yields "".
func (e *Engine) manualLocale(ctx context.Context, userID int) string {
	if userID == 0 || e.consent == nil {
		return ""
	}
	status, err := e.consent.Status(ctx, userID)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", userID).Warn("Failed to read consent during resolution")
		return ""
	}
	if status.ConsentGiven && e.registry.Supported(status.PreferredLocale) {
		return status.PreferredLocale
	}
	return ""
}

func (e *Engine) ipLocale(r *http.Request) string {
	if e.geo == nil {
		return ""
	}
	ip := e.geo.ClientIP(r)
	loc := e.geo.Resolve(ip)
	if loc == nil {
		return ""
	}
	if locale := e.registry.LocaleForRegion(loc.CountryCode); e.registry.Supported(locale) {
		return locale
	}
	return ""
}
