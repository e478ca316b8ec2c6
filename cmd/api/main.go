package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	_ "github.com/lib/pq"

	"github.com/aerocall/server/internal/auth"
	"github.com/aerocall/server/internal/call"
	"github.com/aerocall/server/internal/config"
	"github.com/aerocall/server/internal/db"
	httphandler "github.com/aerocall/server/internal/http"
	"github.com/aerocall/server/internal/http/handlers"
	"github.com/aerocall/server/internal/identity"
	"github.com/aerocall/server/internal/middleware"
	"github.com/aerocall/server/internal/repo"
	"github.com/aerocall/server/internal/team"
	"github.com/aerocall/server/internal/telephony"
)

func main() {
	// Load .env from CWD if present (env vars override)
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := runMigrations(database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := repo.NewUserRepo(database)
	invitationRepo := repo.NewInvitationRepo(database)
	sessionRepo := repo.NewSessionRepo(database)

	// Integrations degrade to explicit unconfigured variants, never crash
	var idVerifier identity.Verifier
	if cfg.IDTokenSecret != "" {
		idVerifier = identity.NewTokenVerifier(cfg.IDTokenSecret)
	} else {
		log.Println("identity provider not configured; session issuance will report service unavailable")
		idVerifier = identity.Unconfigured{}
	}

	var phone telephony.Client
	rcConfig := telephony.Config{
		ServerURL:    cfg.RCServerURL,
		ClientID:     cfg.RCClientID,
		ClientSecret: cfg.RCClientSecret,
		AdminJWT:     cfg.RCAdminJWT,
	}
	if rcConfig.Configured() {
		phone = telephony.NewRingCentral(rcConfig)
	} else {
		log.Println("telephony not configured; call initiation will report service unavailable")
		phone = telephony.Unconfigured{}
	}

	// Services
	sessionService := auth.NewSessionService(cfg.SessionSecret, sessionRepo)
	authService := auth.NewService(idVerifier, sessionService, userRepo)
	callService := call.NewService(userRepo, phone)
	teamService := team.NewService(userRepo, invitationRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, sessionService)
	callHandler := handlers.NewCallHandler(sessionService, callService)
	teamHandler := handlers.NewTeamHandler(teamService)

	// The route guard verifies sessions through the verify endpoint on the
	// public site URL, one round-trip per guarded request
	guardVerifier := middleware.NewVerifyClient(cfg.SiteURL)

	router := httphandler.NewRouter(authHandler, callHandler, teamHandler, sessionService, guardVerifier)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// runMigrations runs database migrations using goose
func runMigrations(database *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	migrationDir := "internal/db/migrations"
	if info, err := os.Stat(migrationDir); err != nil || !info.IsDir() {
		return fmt.Errorf("migrations directory not found (run from the module root)")
	}

	if err := goose.Up(database, migrationDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
