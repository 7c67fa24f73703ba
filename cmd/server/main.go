package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/clearchart/intake/internal/auth"
	"github.com/clearchart/intake/internal/genai"
	"github.com/clearchart/intake/internal/secrets"
	"github.com/clearchart/intake/internal/shared/config"
	"github.com/clearchart/intake/internal/shared/logging"
	"github.com/clearchart/intake/internal/shared/metrics"
	"github.com/clearchart/intake/internal/shared/middleware"
	"github.com/clearchart/intake/internal/web"
)

func main() {
	// Local development convenience; absence is fine in deployment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Logging)
	ctx := context.Background()

	// Secret store is optional; without it secrets resolve from env only.
	var store secrets.Store
	if cfg.Secrets.StoreURL != "" {
		httpStore, err := secrets.NewHTTPStore(ctx, cfg.Secrets.StoreURL, cfg.Secrets.StoreToken, cfg.Secrets.InitMaxElapsed)
		if err != nil {
			log.WithError(err).Warn("secret store unavailable, falling back to environment")
		} else {
			store = httpStore
		}
	}
	resolver := secrets.NewResolver(store, log)

	creds := genai.Credentials{
		GeminiAPIKey: resolver.Resolve(ctx, secrets.GeminiAPIKey),
		OpenAIAPIKey: resolver.Resolve(ctx, secrets.OpenAIAPIKey),
		AssistantID:  resolver.Resolve(ctx, secrets.OpenAIAssistantID),
	}

	var generator genai.Client
	if genai.Configured(cfg.Generation.Mode, creds) {
		generator, err = genai.New(cfg.Generation, creds, log)
		if err != nil {
			log.WithError(err).Fatal("invalid generation configuration")
		}
		log.WithField("mode", cfg.Generation.Mode).Info("report generation configured")
	} else {
		if cfg.Generation.Required {
			log.WithField("mode", cfg.Generation.Mode).Fatal("generation secrets missing")
		}
		log.WithField("mode", cfg.Generation.Mode).Warn("generation secrets missing, report generation disabled")
		generator = genai.Disabled{}
	}

	verifier := auth.NewTokenVerifier(cfg.Auth, log)
	sessions := web.NewMemoryStore(cfg.Auth.SessionTTL)
	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	handler := web.NewHandler(verifier, sessions, generator, cfg.Auth.ClientID, cfg.Server.StaticDir, limiter, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(90 * time.Second))
	r.Use(middleware.SecurityHeaders)
	r.Use(metrics.Middleware)

	r.Handle("/metrics", metrics.Handler())
	r.Mount("/", handler.Routes())

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
