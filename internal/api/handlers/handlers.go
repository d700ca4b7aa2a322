package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindwell-care/mindwell-backend-go/internal/ai"
	"github.com/mindwell-care/mindwell-backend-go/internal/config"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/consent"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/geolocation"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/localesession"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/resolution"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/translation"
	"github.com/mindwell-care/mindwell-backend-go/internal/database"
	"github.com/mindwell-care/mindwell-backend-go/internal/websocket"
	"github.com/mindwell-care/mindwell-backend-go/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	cfg        *config.Config
	repos      *database.Repositories
	registry   *i18n.Registry
	catalog    *i18n.Catalog
	sessions   *localesession.Manager
	consent    *consent.Manager
	geo        *geolocation.Service
	engine     *resolution.Engine
	translator *translation.Translator
	ai         *ai.Manager
	hub        *websocket.Hub
	log        *logrus.Logger

	startedAt time.Time
}

// NewHandlers creates the handler set
func NewHandlers(
	cfg *config.Config,
	repos *database.Repositories,
	registry *i18n.Registry,
	catalog *i18n.Catalog,
	sessions *localesession.Manager,
	consentMgr *consent.Manager,
	geo *geolocation.Service,
	engine *resolution.Engine,
	translator *translation.Translator,
	aiManager *ai.Manager,
	hub *websocket.Hub,
	logger *logrus.Logger,
) *Handlers {
	return &Handlers{
		cfg:        cfg,
		repos:      repos,
		registry:   registry,
		catalog:    catalog,
		sessions:   sessions,
		consent:    consentMgr,
		geo:        geo,
		engine:     engine,
		translator: translator,
		ai:         aiManager,
		hub:        hub,
		log:        logger,
		startedAt:  time.Now(),
	}
}

// Health reports service liveness and collaborator status
func (h *Handlers) Health(c *gin.Context) {
	utils.SendSuccess(c, gin.H{
		"status":            "healthy",
		"uptime_seconds":    int(time.Since(h.startedAt).Seconds()),
		"default_locale":    h.registry.DefaultLocale(),
		"supported_locales": len(h.registry.SupportedLocales()),
		"translation_ready": h.ai.HasProviders(),
		"realtime_sessions": h.hub.Stats().ConnectedClients,
		"locale_sessions":   h.sessions.Len(),
	})
}
