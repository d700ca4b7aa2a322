package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mindwell-care/mindwell-backend-go/internal/api/handlers"
	"github.com/mindwell-care/mindwell-backend-go/internal/api/middleware"
	"github.com/mindwell-care/mindwell-backend-go/internal/config"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/consent"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/localesession"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/resolution"
	"github.com/sirupsen/logrus"
)

// NewRouter creates and configures the main HTTP router
func NewRouter(
	cfg *config.Config,
	h *handlers.Handlers,
	engine *resolution.Engine,
	sessions *localesession.Manager,
	consentMgr *consent.Manager,
	logger *logrus.Logger,
) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware())

	// Public routes
	router.GET("/health", h.Health)

	// Realtime translation channels (token auth inside the handler)
	router.GET("/ws/translate", h.RealtimeTranslate)
	router.GET("/ws/detect", h.RealtimeDetect)

	// API v1 routes
	api := router.Group("/api/v1")
	api.Use(middleware.OptionalAuthMiddleware(cfg.Auth.JWTSecret))
	api.Use(middleware.LocaleMiddleware(engine, sessions, consentMgr, cfg.I18n.CookieSecure, logger))
	{
		// Authentication routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}

		// Language routes (anonymous callers get resolution without
		// stored preferences)
		language := api.Group("/language")
		{
			language.GET("/settings", h.GetLanguageSettings)
			language.GET("/detect", h.DetectLocale)
			language.GET("/options", h.GetLocaleOptions)
			language.POST("/locale", h.SetLocale)
			language.GET("/translations/:locale", h.GetTranslations)
			language.DELETE("/session", h.DeleteLocaleSession)
		}

		// Protected API routes (auth required)
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
		{
			protected.GET("/profile", h.GetProfile)
			protected.POST("/language/consent", h.RecordConsent)

			translate := protected.Group("/translate")
			{
				translate.POST("/text", h.TranslateText)
				translate.POST("/batch", h.TranslateBatch)
				translate.POST("/content", h.TranslateContent)
				translate.POST("/detect", h.DetectLanguage)
			}

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.PUT("/translations/:locale", h.SetTranslation)
				admin.POST("/translations/reload", h.ReloadTranslations)
				admin.GET("/language/stats", h.GetLanguageStats)
				admin.GET("/realtime/stats", h.GetRealtimeStats)
				admin.GET("/realtime/users", h.GetActiveUsers)
			}
		}
	}

	return router
}
