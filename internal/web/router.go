package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/secrets/internal/services/auth"
	"github.com/mcoot/secrets/internal/services/secrets"
	"github.com/mcoot/secrets/internal/services/session"
	"github.com/mcoot/secrets/internal/web/handler"
	"github.com/mcoot/secrets/internal/web/middleware"
	"github.com/mcoot/secrets/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	StateSigner    *auth.StateSigner
	Sessions       *session.Manager
	SecretsService *secrets.Service
	// Feed streams new secrets to open secrets pages (optional)
	Feed           *sse.Hub
	StaticDir      string // Path to static files directory
	// SecureCookies marks the OAuth state cookie HTTPS-only
	SecureCookies bool
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	authMiddleware := middleware.Auth(cfg.Sessions)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.Sessions)
	flashMiddleware := middleware.Flash(cfg.Sessions)

	// Apply global middleware to all routes
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(cfg.Sessions.LoadAndSave)

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Sessions, cfg.Logger)
	oauthHandler := handler.NewOAuthHandler(cfg.AuthService, cfg.StateSigner, cfg.Sessions, cfg.Logger, cfg.SecureCookies)
	secretsHandler := handler.NewSecretsHandler(cfg.SecretsService, cfg.Sessions, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Public routes (optional auth for the nav)
	public := r.NewRoute().Subrouter()
	public.Use(optionalAuthMiddleware)
	public.Use(flashMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	public.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)
	public.HandleFunc("/secrets", secretsHandler.List).Methods(http.MethodGet)
	if cfg.Feed != nil {
		eventsHandler := handler.NewEventsHandler(cfg.Feed, cfg.Logger)
		public.HandleFunc("/secrets/events", eventsHandler.Secrets).Methods(http.MethodGet)
	}

	// OAuth round trip
	public.HandleFunc("/auth/{provider}", oauthHandler.Begin).Methods(http.MethodGet)
	public.HandleFunc("/auth/{provider}/secrets", oauthHandler.Callback).Methods(http.MethodGet)

	// Protected routes (require auth)
	protected := r.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.Use(flashMiddleware)
	protected.HandleFunc("/submit", secretsHandler.SubmitPage).Methods(http.MethodGet)
	protected.HandleFunc("/submit", secretsHandler.Submit).Methods(http.MethodPost)

	// mux does not run middleware for unmatched routes
	r.NotFoundHandler = loggingMiddleware(recoveryMiddleware(cfg.Sessions.LoadAndSave(optionalAuthMiddleware(flashMiddleware(http.HandlerFunc(homeHandler.NotFound))))))

	return r
}
