package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindwell-care/mindwell-backend-go/internal/ai"
	"github.com/mindwell-care/mindwell-backend-go/internal/ai/providers"
	"github.com/mindwell-care/mindwell-backend-go/internal/api"
	"github.com/mindwell-care/mindwell-backend-go/internal/api/handlers"
	"github.com/mindwell-care/mindwell-backend-go/internal/config"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/consent"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/geolocation"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/localesession"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/resolution"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/translation"
	"github.com/mindwell-care/mindwell-backend-go/internal/database"
	"github.com/mindwell-care/mindwell-backend-go/internal/websocket"
	"github.com/mindwell-care/mindwell-backend-go/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New()
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret must be configured")
	}

	// Database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationsPath); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	repos := database.NewRepositories(db)

	// Locale core
	registry := i18n.NewRegistry(cfg.I18n.DefaultLocale, cfg.I18n.SupportedLocales)
	catalog, err := i18n.NewCatalog(registry, cfg.I18n.LocalesPath, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load translation catalogs")
	}

	var geo *geolocation.Service
	if cfg.Geolocation.Enabled {
		geo = geolocation.NewService(cfg.Geolocation, registry, log)
		defer geo.Close()
	}

	sessions := localesession.NewManager(registry, catalog,
		time.Duration(cfg.I18n.SessionLifetimeHours)*time.Hour, log)
	consentMgr := consent.NewManager(repos.Consent, registry, log)
	engine := resolution.NewEngine(registry, catalog, sessions, consentMgr, geo, log)

	// Translation collaborator
	aiTimeout, err := time.ParseDuration(cfg.AI.Timeout)
	if err != nil {
		aiTimeout = 30 * time.Second
	}
	aiManager := ai.NewManager(cfg.AI.FallbackEnabled, aiTimeout, log)
	for _, pc := range cfg.AI.Providers {
		if !pc.Enabled {
			continue
		}
		switch pc.Type {
		case "openai":
			aiManager.Register(providers.NewOpenAIProvider(pc, log), pc.Priority)
		case "ollama":
			aiManager.Register(providers.NewOllamaProvider(pc, log), pc.Priority)
		default:
			log.WithField("type", pc.Type).Warn("Unknown language model provider type, skipping")
		}
	}
	if !aiManager.HasProviders() {
		log.Warn("No language model provider available, translation endpoints will fail")
	}
	translator := translation.NewTranslator(registry, catalog, aiManager, log)

	// Realtime hub
	hub := websocket.NewHub(log)
	go hub.Run()

	h := handlers.NewHandlers(cfg, repos, registry, catalog, sessions, consentMgr, geo, engine, translator, aiManager, hub, log)
	router := api.NewRouter(cfg, h, engine, sessions, consentMgr, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr": server.Addr,
			"mode": cfg.Server.Mode,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	log.Info("Server stopped")
}
