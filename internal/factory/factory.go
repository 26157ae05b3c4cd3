package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/gormstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mcoot/secrets/internal/config"
	"github.com/mcoot/secrets/internal/dependencies/clock"
	"github.com/mcoot/secrets/internal/dependencies/random"
	"github.com/mcoot/secrets/internal/services/auth"
	"github.com/mcoot/secrets/internal/services/secrets"
	"github.com/mcoot/secrets/internal/services/session"
	"github.com/mcoot/secrets/internal/storage"
	"github.com/mcoot/secrets/internal/storage/memory"
	redisstorage "github.com/mcoot/secrets/internal/storage/redis"
	sqlstorage "github.com/mcoot/secrets/internal/storage/sql"
	"github.com/mcoot/secrets/internal/web/sse"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage      storage.Storage
	SessionStore scs.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService    *auth.Service
	StateSigner    *auth.StateSigner
	Sessions       *session.Manager
	SecretsService *secrets.Service

	// Feed streams submitted secrets to open secrets pages
	Feed *sse.Hub

	closeOnce sync.Once
	closeErr  error
}

// cleanupStopper is implemented by session stores that sweep expired
// sessions in a background goroutine (memstore, gormstore)
type cleanupStopper interface {
	StopCleanup()
}

// Config holds configuration for the application factory
type Config struct {
	// StateKey signs the OAuth state parameter (required, at least 16 bytes)
	StateKey []byte
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// SessionConfig holds session cookie settings (optional)
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sql")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLConfig holds sqlite settings (optional if StorageType is "sql")
	SQLConfig *sqlstorage.Config
}

// New creates a new application with all dependencies wired. Sessions are
// kept in the same backend as accounts.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	var sessionStore scs.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		store = memory.New()
		sessionStore = memstore.New()
	case config.StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCfg := *cfg.RedisConfig
		if redisCfg.Logger == nil {
			redisCfg.Logger = logger
		}
		client, err := redisstorage.NewClient(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		store = redisstorage.NewWithClient(client, redisCfg)
		sessionStore = goredisstore.New(client)
	case config.StorageTypeSQL:
		sqlCfg := sqlstorage.DefaultConfig()
		if cfg.SQLConfig != nil {
			sqlCfg = *cfg.SQLConfig
		}
		db, err := sqlstorage.Open(sqlCfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		sqlStore := sqlstorage.NewWithDB(db)
		gormSessions, err := gormstore.New(db)
		if err != nil {
			_ = sqlStore.Close()
			return nil, fmt.Errorf("create session table: %w", err)
		}
		store = sqlStore
		sessionStore = gormSessions
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sql'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.BcryptCost == 0 {
		authCfg.BcryptCost = auth.DefaultConfig().BcryptCost
	}

	app, err := newWithDependencies(store, sessionStore, clk, rnd, cfg.StateKey, authCfg, cfg.SessionConfig, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Info("application wired",
		slog.String("storage", storageType),
		slog.Any("oauth_providers", app.AuthService.Providers()),
	)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	sessionStore scs.Store,
	clk clock.Clock,
	rnd random.Random,
	stateKey []byte,
	authCfg auth.Config,
	sessionCfg session.Config,
	logger *slog.Logger,
) (*App, error) {
	stateSigner, err := auth.NewStateSigner(stateKey, 0, clk, rnd)
	if err != nil {
		return nil, err
	}

	authService := auth.New(store, clk, rnd, authCfg, logger)
	sessions := session.New(sessionStore, sessionCfg, store, logger)
	secretsService := secrets.New(store, clk, logger)

	feed := sse.NewHub(logger)
	go feed.Run()
	secretsService.Notify(sse.NewBroadcaster(feed, logger))

	return &App{
		Storage:        store,
		SessionStore:   sessionStore,
		Clock:          clk,
		Random:         rnd,
		AuthService:    authService,
		StateSigner:    stateSigner,
		Sessions:       sessions,
		SecretsService: secretsService,
		Feed:           feed,
	}, nil
}

// Close disconnects feed clients, stops session cleanup and releases the
// storage backend. Later calls return the first result.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.Feed.Close()
		if s, ok := a.SessionStore.(cleanupStopper); ok {
			s.StopCleanup()
		}
		a.closeErr = a.Storage.Close()
	})
	return a.closeErr
}
