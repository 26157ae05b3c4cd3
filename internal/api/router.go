package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/secrets/internal/api/apierr"
	"github.com/mcoot/secrets/internal/api/handler"
	"github.com/mcoot/secrets/internal/api/middleware"
	"github.com/mcoot/secrets/internal/api/response"
	"github.com/mcoot/secrets/internal/services/secrets"
	"github.com/mcoot/secrets/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Sessions       *session.Manager
	SecretsService *secrets.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	secretsHandler := handler.NewSecretsHandler(cfg.SecretsService, cfg.Logger)
	accountHandler := handler.NewAccountHandler()

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Sessions)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(recoveryMiddleware)
	api.Use(cfg.Sessions.LoadAndSave)

	// Public routes
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/secrets", secretsHandler.List).Methods(http.MethodGet)

	// Routes for the signed-in account (browser session cookie)
	me := api.PathPrefix("/me").Subrouter()
	me.Use(authMiddleware)
	me.HandleFunc("", accountHandler.GetMe).Methods(http.MethodGet)
	me.HandleFunc("/secret", secretsHandler.Submit).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
