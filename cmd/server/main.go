package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JacqueDave/WebsiteJacques/internal/config"
	"github.com/JacqueDave/WebsiteJacques/internal/database"
	"github.com/JacqueDave/WebsiteJacques/internal/email"
	"github.com/JacqueDave/WebsiteJacques/internal/handler"
	"github.com/JacqueDave/WebsiteJacques/internal/logger"
	"github.com/JacqueDave/WebsiteJacques/internal/middleware"
	"github.com/JacqueDave/WebsiteJacques/internal/repository"
	"github.com/JacqueDave/WebsiteJacques/internal/router"
	"github.com/JacqueDave/WebsiteJacques/internal/service"
	"github.com/JacqueDave/WebsiteJacques/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", "0.1.0").Msg("starting leverage server")

	// Connect to the optional local lead archive
	var db *database.Postgres
	var leadRepo *repository.LeadRepository
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		leadRepo = repository.NewLeadRepository(db)
		log.Info().Msg("connected to PostgreSQL")
	}

	// Connect to Redis
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("connected to Redis")

	// Hosted lead database. Missing settings degrade lead capture instead of
	// failing startup: submissions still redirect, nothing is stored.
	var store service.LeadStore
	if cfg.Supabase.Enabled() {
		store = supabase.NewClient(cfg.Supabase, log)
		log.Info().Str("table", cfg.Supabase.Table).Msg("hosted lead database configured")
	} else {
		log.Warn().Msg("hosted lead database not configured; lead capture disabled")
	}

	// Email sender for purchase fulfillment
	sender := buildSender(cfg, log)

	// Initialize services
	leadSvc := service.NewLeadService(store, leadRepo, rdb, cfg, log)
	purchaseSvc := service.NewPurchaseService(sender, cfg, log)

	// Initialize handlers
	h := handler.New(db, rdb, log, cfg, leadSvc, purchaseSvc)

	// Initialize middleware
	mw := middleware.New(rdb, log, cfg)

	// Set up router
	r := router.New(h, mw, log)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// buildSender wires the configured email provider. A misconfigured provider
// degrades fulfillment (the webhook reports a send failure) rather than
// blocking startup.
func buildSender(cfg *config.Config, log *logger.Logger) email.Sender {
	switch cfg.Email.Provider {
	case "gmail":
		gm := cfg.Email.Gmail
		if gm.CredentialsJSON != "" {
			sender, err := email.NewGmailSender(context.Background(), email.GmailConfig{
				CredentialsJSON: gm.CredentialsJSON,
				SenderAddress:   cfg.Email.SenderAddress,
				SenderName:      cfg.Email.SenderName,
			})
			if err != nil {
				log.Warn().Err(err).Msg("failed to initialize Gmail sender")
				return nil
			}
			log.Info().Msg("email sender initialized (gmail service account)")
			return sender
		}
		sender, err := email.NewGmailSenderWithToken(
			context.Background(),
			gm.ClientID, gm.ClientSecret, gm.RefreshToken,
			cfg.Email.SenderAddress, cfg.Email.SenderName,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Gmail sender")
			return nil
		}
		log.Info().Msg("email sender initialized (gmail oauth token)")
		return sender
	default:
		sender, err := email.NewResendSender(cfg.Email.Resend.APIKey, cfg.Email.SenderAddress, cfg.Email.SenderName)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Resend sender; purchase emails disabled")
			return nil
		}
		log.Info().Msg("email sender initialized (resend)")
		return sender
	}
}
