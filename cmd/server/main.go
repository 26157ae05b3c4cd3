package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mcoot/secrets/internal/api"
	"github.com/mcoot/secrets/internal/config"
	"github.com/mcoot/secrets/internal/factory"
	"github.com/mcoot/secrets/internal/services/auth"
	"github.com/mcoot/secrets/internal/services/session"
	redisstorage "github.com/mcoot/secrets/internal/storage/redis"
	sqlstorage "github.com/mcoot/secrets/internal/storage/sql"
	"github.com/mcoot/secrets/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Read .env and the environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	sessionCfg := session.DefaultConfig()
	sessionCfg.Secure = strings.HasPrefix(cfg.BaseURL, "https://")

	authCfg := auth.DefaultConfig()
	authCfg.Providers = []auth.OAuthConfig{
		auth.GoogleConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.CallbackURL("google")),
		auth.FacebookConfig(cfg.FacebookAppID, cfg.FacebookSecret, cfg.CallbackURL("facebook")),
	}

	// Build factory config
	factoryCfg := factory.Config{
		StateKey:      []byte(cfg.Secret),
		AuthConfig:    authCfg,
		SessionConfig: sessionCfg,
		Logger:        logger,
		StorageType:   cfg.StorageType,
	}

	switch cfg.StorageType {
	case config.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	case config.StorageTypeSQL:
		sqlCfg := sqlstorage.DefaultConfig()
		sqlCfg.Path = cfg.DatabasePath
		factoryCfg.SQLConfig = &sqlCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Sessions:       app.Sessions,
		SecretsService: app.SecretsService,
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		StateSigner:    app.StateSigner,
		Sessions:       app.Sessions,
		SecretsService: app.SecretsService,
		Feed:           app.Feed,
		StaticDir:      cfg.StaticDir,
		SecureCookies:  sessionCfg.Secure,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(mux, serverConfig, logger)
	server.RegisterOnShutdown(app.Feed.Close)

	// Serve until SIGINT or SIGTERM, then drain
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
