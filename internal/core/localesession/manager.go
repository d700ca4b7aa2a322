package localesession

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/sirupsen/logrus"
)

const (
	// SessionCookie carries the opaque session identifier
	SessionCookie = "locale_session"
	// LocaleCookie exposes the resolved locale to clients
	LocaleCookie = "locale"
)

// Session binds a (possibly anonymous) caller to a resolved locale.
// user_id 0 means anonymous.
type Session struct {
	ID         string    `json:"id"`
	UserID     int       `json:"user_id"`
	Locale     string    `json:"locale"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Manager holds short-lived locale sessions in memory with sliding
// idle expiration. Expired sessions are purged on read.
type Manager struct {
	registry *i18n.Registry
	catalog  *i18n.Catalog
	logger   *logrus.Logger
	lifetime time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	now func() time.Time
}

// NewManager creates the session manager. A non-positive lifetime
// defaults to 24 hours.
func NewManager(registry *i18n.Registry, catalog *i18n.Catalog, lifetime time.Duration, logger *logrus.Logger) *Manager {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Manager{
		registry: registry,
		catalog:  catalog,
		logger:   logger,
		lifetime: lifetime,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create generates a new session. An absent or unsupported locale is
// replaced by the process current locale.
func (m *Manager) Create(userID int, locale string) string {
	if locale == "" || !m.registry.Supported(locale) {
		locale = m.catalog.CurrentLocale()
	}

	id := uuid.New().String()
	now := m.now()

	m.mu.Lock()
	m.sessions[id] = &Session{
		ID:         id,
		UserID:     userID,
		Locale:     locale,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	m.mu.Unlock()

	return id
}

// Get returns the session, refreshing its idle timer. Sessions idle
// beyond the lifetime are deleted and reported as missing.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil
	}

	now := m.now()
	if now.Sub(session.LastUsedAt) > m.lifetime {
		delete(m.sessions, id)
		return nil
	}

	session.LastUsedAt = now
	copy := *session
	return &copy
}

// UpdateLocale changes the session's locale. It fails without mutation
// when the session is gone or the locale unsupported; on success it
// also moves the process current locale.
func (m *Manager) UpdateLocale(id, locale string) bool {
	if !m.registry.Supported(locale) {
		return false
	}

	m.mu.Lock()
	session, ok := m.sessions[id]
	if !ok || m.now().Sub(session.LastUsedAt) > m.lifetime {
		if ok {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		return false
	}
	session.Locale = locale
	session.LastUsedAt = m.now()
	m.mu.Unlock()

	m.catalog.SetLocale(locale)
	return true
}

// Delete removes a session
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Len reports the number of live sessions (expired ones included until
// read).
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SetCookies writes the session and locale cookies on a response.
func (m *Manager) SetCookies(c *gin.Context, sessionID, locale string, secure bool) {
	maxAge := int(m.lifetime.Seconds())
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		MaxAge:   maxAge,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     LocaleCookie,
		Value:    locale,
		MaxAge:   maxAge,
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
