package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindwell-care/mindwell-backend-go/internal/api/middleware"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/localesession"
	"github.com/mindwell-care/mindwell-backend-go/pkg/errors"
	"github.com/mindwell-care/mindwell-backend-go/pkg/utils"
	"github.com/sirupsen/logrus"
)

// GetLanguageSettings returns the caller's consent state together with
// the locale resolved for this request.
func (h *Handlers) GetLanguageSettings(c *gin.Context) {
	userID := middleware.UserID(c)

	response := gin.H{
		"locale":           c.GetString(middleware.ContextLocale),
		"locale_source":    c.GetString(middleware.ContextLocaleSource),
		"default_locale":   h.registry.DefaultLocale(),
		"rtl":              h.registry.IsRTL(c.GetString(middleware.ContextLocale)),
		"suggested_locale": h.suggestedLocale(c),
	}

	if userID != 0 {
		status, err := h.consent.Status(c.Request.Context(), userID)
		if err != nil {
			h.log.WithError(err).WithField("user_id", userID).Error("Failed to read consent")
			utils.SendError(c, http.StatusInternalServerError, "Failed to read language settings")
			return
		}
		response["consent"] = status
	}

	utils.SendSuccess(c, response)
}

// RecordConsent stores the user's language consent decision and, when
// consent carries a preferred locale, applies it to the live session.
// The durable write happens before anything else changes.
func (h *Handlers) RecordConsent(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		utils.SendError(c, http.StatusUnauthorized, "Authentication required for language consent")
		return
	}

	var request struct {
		ConsentGiven    bool                   `json:"consent_given"`
		PreferredLocale string                 `json:"preferred_locale"`
		LocaleSource    string                 `json:"locale_source"`
		ConsentData     map[string]interface{} `json:"consent_data"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := h.consent.Record(c.Request.Context(), userID,
		request.ConsentGiven, request.PreferredLocale, request.LocaleSource, request.ConsentData)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.SendErrorWithDetails(c, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		h.log.WithError(err).WithField("user_id", userID).Error("Failed to record consent")
		utils.SendError(c, http.StatusInternalServerError, "Failed to record consent")
		return
	}

	// Apply only after the record is durable
	if status.ConsentGiven && status.PreferredLocale != "" {
		h.applyLocale(c, userID, status.PreferredLocale)
	}

	utils.SendSuccess(c, status)
}

// SetLocale manually selects a locale for the caller. Authenticated
// users implicitly consent; the preference is stored with a manual
// source before the session changes.
func (h *Handlers) SetLocale(c *gin.Context) {
	var request struct {
		Locale string `json:"locale" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.registry.Supported(request.Locale) {
		utils.SendErrorWithDetails(c, http.StatusBadRequest, "Bad request",
			"locale "+request.Locale+" is not supported")
		return
	}

	userID := middleware.UserID(c)
	if userID != 0 {
		if _, err := h.consent.Record(c.Request.Context(), userID, true, request.Locale, "manual", nil); err != nil {
			h.log.WithError(err).WithField("user_id", userID).Error("Failed to store locale preference")
			utils.SendError(c, http.StatusInternalServerError, "Failed to store locale preference")
			return
		}
	}

	sessionID := h.applyLocale(c, userID, request.Locale)

	utils.SendSuccess(c, gin.H{
		"locale":     request.Locale,
		"source":     "manual",
		"session_id": sessionID,
		"rtl":        h.registry.IsRTL(request.Locale),
	})
}

// DetectLocale reports the winning locale and every candidate signal
// for diagnostics.
func (h *Handlers) DetectLocale(c *gin.Context) {
	userID := middleware.UserID(c)
	resolved, candidates := h.engine.Detect(c.Request.Context(), c.Request, userID)

	response := gin.H{
		"locale":     resolved.Locale,
		"source":     resolved.Source,
		"candidates": candidates,
		"rtl":        h.registry.IsRTL(resolved.Locale),
	}

	if h.geo != nil {
		tz := h.geo.TimezoneForIP(h.geo.ClientIP(c.Request))
		response["timezone"] = tz
		response["timezone_locale"] = h.registry.LocaleForTimezone(tz)
	}

	utils.SendSuccess(c, response)
}

// GetLocaleOptions lists supported locales for client pickers
func (h *Handlers) GetLocaleOptions(c *gin.Context) {
	utils.SendSuccess(c, gin.H{
		"options":        h.registry.Options(),
		"default_locale": h.registry.DefaultLocale(),
	})
}

// GetTranslations exports the full catalog for a locale
func (h *Handlers) GetTranslations(c *gin.Context) {
	locale := c.Param("locale")
	tree, err := h.catalog.Export(locale)
	if err != nil {
		utils.SendErrorWithDetails(c, http.StatusBadRequest, "Bad request", err.Error())
		return
	}
	utils.SendSuccessWithMeta(c, tree, gin.H{
		"locale":    locale,
		"key_count": h.catalog.KeyCount(locale),
	})
}

// SetTranslation writes a single catalog key (admin)
func (h *Handlers) SetTranslation(c *gin.Context) {
	locale := c.Param("locale")

	var request struct {
		Key   string `json:"key" binding:"required"`
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.catalog.Set(request.Key, request.Value, locale); err != nil {
		utils.SendErrorWithDetails(c, http.StatusBadRequest, "Bad request", err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{
		"locale": locale,
		"key":    request.Key,
		"value":  request.Value,
	})
}

// ReloadTranslations re-reads every locale catalog from disk (admin)
func (h *Handlers) ReloadTranslations(c *gin.Context) {
	if err := h.catalog.ReloadAll(); err != nil {
		utils.SendErrorWithDetails(c, http.StatusInternalServerError, "Reload incomplete", err.Error())
		return
	}

	counts := make(map[string]int)
	for _, locale := range h.registry.SupportedLocales() {
		counts[locale] = h.catalog.KeyCount(locale)
	}
	utils.SendSuccess(c, gin.H{"reloaded": true, "key_counts": counts})
}

// GetLanguageStats reports per-locale catalog coverage and realtime
// usage.
func (h *Handlers) GetLanguageStats(c *gin.Context) {
	type localeStats struct {
		Locale   string `json:"locale"`
		KeyCount int    `json:"key_count"`
		RTL      bool   `json:"rtl"`
	}

	stats := make([]localeStats, 0, len(h.registry.SupportedLocales()))
	for _, locale := range h.registry.SupportedLocales() {
		stats = append(stats, localeStats{
			Locale:   locale,
			KeyCount: h.catalog.KeyCount(locale),
			RTL:      h.registry.IsRTL(locale),
		})
	}

	utils.SendSuccess(c, gin.H{
		"locales":         stats,
		"default_locale":  h.registry.DefaultLocale(),
		"locale_sessions": h.sessions.Len(),
		"active_users":    h.hub.ActiveUsers(),
	})
}

// DeleteLocaleSession drops the caller's locale session (logout)
func (h *Handlers) DeleteLocaleSession(c *gin.Context) {
	cookie, err := c.Request.Cookie(localesession.SessionCookie)
	if err != nil || cookie.Value == "" {
		utils.SendError(c, http.StatusNotFound, "No locale session")
		return
	}
	if !h.sessions.Delete(cookie.Value) {
		utils.SendError(c, http.StatusNotFound, "No locale session")
		return
	}
	utils.SendSuccess(c, gin.H{"deleted": true})
}

// suggestedLocale proposes a locale for the consent prompt: the
// geolocated locale when available, else the browser preference, else
// the default.
func (h *Handlers) suggestedLocale(c *gin.Context) string {
	if h.geo != nil {
		if loc := h.geo.Resolve(h.geo.ClientIP(c.Request)); loc != nil {
			if locale := h.registry.LocaleForRegion(loc.CountryCode); h.registry.Supported(locale) {
				return locale
			}
		}
	}
	if locale := h.registry.BrowserLocale(c.Request.Header.Get("Accept-Language")); locale != "" {
		return locale
	}
	return h.registry.DefaultLocale()
}

// applyLocale moves the caller's session (existing or fresh) to the
// locale and refreshes the cookies. Returns the session id.
func (h *Handlers) applyLocale(c *gin.Context, userID int, locale string) string {
	sessionID := c.GetString(middleware.ContextLocaleSession)
	if sessionID == "" || !h.sessions.UpdateLocale(sessionID, locale) {
		sessionID = h.sessions.Create(userID, locale)
	}
	h.sessions.SetCookies(c, sessionID, locale, h.cfg.I18n.CookieSecure)

	h.log.WithFields(logrus.Fields{
		"user_id": userID,
		"locale":  locale,
	}).Info("Locale applied to session")
	return sessionID
}
