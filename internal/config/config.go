package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage types
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQL    = "sql"
)

const (
	defaultPort         = 3000
	defaultBaseURL      = "http://localhost:3000"
	defaultDatabasePath = "secrets.db"
	defaultStaticDir    = "internal/web/static"
)

// Config is the server configuration read from the environment
type Config struct {
	// Secret signs the OAuth state
	Secret string

	GoogleClientID     string
	GoogleClientSecret string
	FacebookAppID      string
	FacebookSecret     string

	Port    int
	BaseURL string

	StorageType  string
	RedisURL     string
	DatabasePath string

	LogLevel  slog.Level
	StaticDir string
}

// Load reads the configuration from the environment after loading any of the
// given .env files that exist (".env" when none are given). Variables already
// set in the environment take precedence over .env entries.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment
func FromEnv() (Config, error) {
	cfg := Config{
		Secret:             os.Getenv("SECRET"),
		GoogleClientID:     os.Getenv("CLIENT_ID"),
		GoogleClientSecret: os.Getenv("CLIENT_SECRET"),
		FacebookAppID:      os.Getenv("FB_APP_ID"),
		FacebookSecret:     os.Getenv("FB_SECRET"),
		Port:               defaultPort,
		BaseURL:            strings.TrimRight(envOr("BASE_URL", defaultBaseURL), "/"),
		StorageType:        strings.ToLower(envOr("STORAGE_TYPE", StorageTypeMemory)),
		RedisURL:           os.Getenv("REDIS_URL"),
		DatabasePath:       envOr("DATABASE_PATH", defaultDatabasePath),
		StaticDir:          os.Getenv("STATIC_DIR"),
	}

	if cfg.Secret == "" {
		return Config{}, errors.New("SECRET is required")
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("PORT must be a valid port number, got %q", raw)
		}
		cfg.Port = port
	}

	switch cfg.StorageType {
	case StorageTypeMemory, StorageTypeSQL:
	case StorageTypeRedis:
		if cfg.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL is required when STORAGE_TYPE=redis")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_TYPE must be one of memory, redis, sql, got %q", cfg.StorageType)
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	if cfg.StaticDir == "" {
		cfg.StaticDir = findStaticDir()
	}

	return cfg, nil
}

// CallbackURL returns the OAuth callback URL for provider
func (c Config) CallbackURL(provider string) string {
	return c.BaseURL + "/auth/" + provider + "/secrets"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	candidates := []string{
		defaultStaticDir,
		filepath.Join(os.Getenv("PWD"), defaultStaticDir),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
