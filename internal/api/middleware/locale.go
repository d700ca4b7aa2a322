package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/consent"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/localesession"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/resolution"
	"github.com/sirupsen/logrus"
)

// Context keys set by LocaleMiddleware.
const (
	ContextLocale        = "locale"
	ContextLocaleSource  = "locale_source"
	ContextLocaleSession = "locale_session_id"
)

// LocaleMiddleware resolves the effective locale for every request and
// binds it to a locale session. Requests without a live session get a
// fresh one with cookies on the response; requests with one slide its
// expiry as a side effect of resolution. Must run after auth so the
// stored-preference signal can see the user.
func LocaleMiddleware(engine *resolution.Engine, sessions *localesession.Manager, consentMgr *consent.Manager, cookieSecure bool, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		resolved := engine.Resolve(c.Request.Context(), c.Request, userID)

		sessionID := ""
		if cookie, err := c.Request.Cookie(localesession.SessionCookie); err == nil {
			if s := sessions.Get(cookie.Value); s != nil {
				sessionID = s.ID
			}
		}
		if sessionID == "" {
			sessionID = sessions.Create(userID, resolved.Locale)
			logger.WithFields(logrus.Fields{
				"locale": resolved.Locale,
				"source": resolved.Source,
			}).Debug("Locale session created")
		}
		sessions.SetCookies(c, sessionID, resolved.Locale, cookieSecure)

		c.Set(ContextLocale, resolved.Locale)
		c.Set(ContextLocaleSource, resolved.Source)
		c.Set(ContextLocaleSession, sessionID)
		c.Header("Content-Language", resolved.Locale)

		// Authenticated users who never decided on language consent get
		// a hint so clients can prompt for it.
		if userID != 0 && consentMgr != nil {
			if status, err := consentMgr.Status(c.Request.Context(), userID); err == nil && !status.ConsentGiven {
				c.Header("X-Translation-Consent-Required", "true")
			}
		}

		c.Next()
	}
}

// RequestLocale returns the locale resolved for this request, falling
// back to the given default when the middleware did not run.
func RequestLocale(c *gin.Context, fallback string) string {
	if locale := c.GetString(ContextLocale); locale != "" {
		return locale
	}
	return fallback
}
