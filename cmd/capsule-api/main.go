package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/capsule-api/internal/config"
	"github.com/dimitrije/capsule-api/internal/database"
	"github.com/dimitrije/capsule-api/internal/events"
	"github.com/dimitrije/capsule-api/internal/handlers"
	"github.com/dimitrije/capsule-api/internal/logging"
	"github.com/dimitrije/capsule-api/internal/server"
	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/dimitrije/capsule-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction())

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logging.Logger) error {
	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var publisher events.Publisher = &events.NoopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		publisher = natsPublisher
		log.Info(ctx, "publishing events to NATS", "url", cfg.NATSURL)
	}
	defer func() { _ = publisher.Close() }()

	var payloads services.PayloadStorage
	if cfg.S3.IsConfigured() {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return err
		}
		payloads = s3Storage
	} else {
		log.Warn(ctx, "S3 is not configured, vault payload URLs are disabled")
	}

	jwtService := services.NewJWTService(cfg.JWTSecret)
	capsuleService := services.NewCapsuleService(db, cfg.InviteCodeLength, publisher, log.With("component", "capsules"))
	gateEngine := services.NewGateEngine(services.NewItemStore(db), capsuleService, publisher, log.With("component", "gate"))
	vaultService := services.NewVaultService(services.NewVaultStore(db), capsuleService, payloads, publisher, log.With("component", "vault"))
	countsService := services.NewCountsService(db, capsuleService)
	emailService := services.NewEmailService(cfg.SMTP)

	router := server.NewRouter(server.Options{
		Production:  cfg.IsProduction(),
		Validator:   jwtService,
		Log:         log.With("component", "http"),
		HealthCheck: db.Pool.Ping,
	}, server.Handlers{
		Capsules: handlers.NewCapsuleHandler(capsuleService, countsService, emailService),
		Items:    handlers.NewItemHandler(gateEngine),
		Vault:    handlers.NewVaultHandler(vaultService),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
