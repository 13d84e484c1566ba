package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movexa_cms/internal/backend"
	"movexa_cms/internal/config"
	"movexa_cms/internal/handler"
	"movexa_cms/internal/metrics"
	"movexa_cms/internal/service"
	"movexa_cms/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, dotenv, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if !dotenv {
		log.Debug("No .env file found, relying on environment variables")
	}
	gin.SetMode(cfg.GinMode)

	// --- Storage ---
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	store, err := backend.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.StorageBackend, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Error("Failed to close storage")
		}
	}()

	// --- Initialize Utilities ---
	hasher, err := utils.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Invalid password hasher config: %v", err)
	}
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.TokenTTL())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// --- Initialize Services ---
	authService := service.NewAuthService(store.Users, hasher, jwtUtil, log, service.WithMetrics(m))
	profileService := service.NewProfileService(store.Users, hasher)
	catalogService := service.NewCatalogService(store.Services)
	contentService := service.NewContentService(store.Content)

	if cfg.Admin.Enabled() {
		status, err := authService.EnsureAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password, false)
		if err != nil {
			log.Fatalf("Failed to bootstrap admin account: %v", err)
		}
		log.WithFields(logrus.Fields{"username": cfg.Admin.Username, "status": status}).Info("Admin account checked")
	}

	// --- Setup Gin Router ---
	router := handler.NewRouter(handler.RouterDeps{
		Store:     store,
		Auth:      authService,
		Profile:   profileService,
		Catalog:   catalogService,
		Content:   contentService,
		Tokens:    jwtUtil,
		Metrics:   m,
		Log:       log,
		StaticDir: cfg.StaticDir,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s (%s storage)", cfg.ServerPort, store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exiting")
}
