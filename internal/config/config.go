// Package config loads the service configuration from the environment.
// The struct is built once in main and passed by injection; there is no
// ambient global configuration state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the complete runtime configuration of the auth service.
type Config struct {
	Env        string // development | production
	ListenAddr string

	DatabaseDSN string

	JWTPrivateKey []byte // PEM-encoded RSA private key
	JWTPublicKey  []byte // PEM-encoded RSA public key
	JWTIssuer     string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	ConfirmCodeLength int
	MaxCodeAttempts   int
	LockoutDuration   time.Duration

	AccountAPIURL  string
	InternalAPIKey string

	TelegramToken  string
	TelegramChatID string

	SentryDSN string
}

// Load reads configuration from the environment, applying defaults for the
// optional knobs. DSN, key material and the account service URL are required.
func Load() (*Config, error) {
	cfg := &Config{
		Env:               envOrDefault("APP_ENV", "development"),
		ListenAddr:        envOrDefault("LISTEN_ADDR", ":8080"),
		JWTIssuer:         envOrDefault("JWT_ISSUER", "auth.annboard"),
		InternalAPIKey:    os.Getenv("API_KEY"),
		TelegramToken:     os.Getenv("TG_BOT_TOKEN"),
		TelegramChatID:    os.Getenv("TG_CHAT_ID"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		AccessTokenTTL:    envSecondsOrDefault("ACCESS_TOKEN_TTL_SECONDS", 3600),
		RefreshTokenTTL:   envSecondsOrDefault("REFRESH_TOKEN_TTL_SECONDS", 7*24*3600),
		ConfirmCodeLength: envIntOrDefault("CONFIRM_CODE_LENGTH", 5),
		MaxCodeAttempts:   envIntOrDefault("MAX_CODE_ATTEMPTS", 5),
		LockoutDuration:   envSecondsOrDefault("LOCKOUT_DURATION_SECONDS", 24*3600),
	}

	var err error
	if cfg.DatabaseDSN, err = mustEnv("AUTH_DB_URL"); err != nil {
		return nil, err
	}
	if cfg.AccountAPIURL, err = mustEnv("ACCOUNT_API_URL"); err != nil {
		return nil, err
	}
	priv, err := mustEnv("JWT_PRIVATE_KEY")
	if err != nil {
		return nil, err
	}
	pub, err := mustEnv("JWT_PUBLIC_KEY")
	if err != nil {
		return nil, err
	}
	cfg.JWTPrivateKey = []byte(priv)
	cfg.JWTPublicKey = []byte(pub)

	return cfg, nil
}

func mustEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("missing required environment variable %s", key)
	}
	return v, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envSecondsOrDefault(key string, defSeconds int) time.Duration {
	return time.Duration(envIntOrDefault(key, defSeconds)) * time.Second
}
