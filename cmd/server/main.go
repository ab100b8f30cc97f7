// Command auth-server starts the annboard authentication service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/annboard/auth-service/internal/accounts"
	"github.com/annboard/auth-service/internal/config"
	"github.com/annboard/auth-service/internal/migrate"
	"github.com/annboard/auth-service/internal/notify"
	"github.com/annboard/auth-service/internal/repository/postgres"
	"github.com/annboard/auth-service/internal/server/httpapi"
	"github.com/annboard/auth-service/internal/service"
	"github.com/annboard/auth-service/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the HTTP server.
func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.ListenAddr),
	)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
			logger.Error("init sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres.New", zap.Error(err))
	}
	defer db.Close()

	codec, err := token.NewFromPEM(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.JWTIssuer)
	if err != nil {
		logger.Fatal("parse jwt keys", zap.Error(err))
	}

	signupRepo := postgres.NewSignupRepo(db, cfg.MaxCodeAttempts, cfg.LockoutDuration)
	tokenRepo := postgres.NewTokenRepo(db, cfg.RefreshTokenTTL)
	directory := accounts.NewClient(cfg.AccountAPIURL, cfg.InternalAPIKey)

	var sink notify.Sink = notify.Nop{}
	if cfg.TelegramToken != "" {
		sink = notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	}

	authSvc := service.NewAuthService(signupRepo, tokenRepo, codec, directory, sink, logger, service.Options{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		CodeLength: cfg.ConfirmCodeLength,
	})

	handler := httpapi.NewHandler(authSvc, logger)
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.NewRouter(handler, logger, cfg.InternalAPIKey),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
