package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/services/auth"
	"github.com/mcoot/secrets/internal/services/session"
	"github.com/mcoot/secrets/internal/web/templates/pages"
)

// Form messages
const (
	msgInvalidCredential  = "Credential is not valid!"
	msgAlreadyRegistered  = "Email already registered"
	msgMissingCredentials = "Username and password are required"
	msgRegisterFailed     = "Registration failed, please try again"
)

// AuthHandler handles local registration, login and logout
type AuthHandler struct {
	authService *auth.Service
	sessions    *session.Manager
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, "")
}

// RegisterPage renders the registration page
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, "")
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, msgMissingCredentials)
		return
	}

	account, err := h.authService.RegisterAccount(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameTaken):
			h.renderRegister(w, r, msgAlreadyRegistered)
		case errors.Is(err, auth.ErrMissingCredentials):
			h.renderRegister(w, r, msgMissingCredentials)
		default:
			h.logger.Error("registration failed", slog.String("error", err.Error()))
			h.renderRegister(w, r, msgRegisterFailed)
		}
		return
	}

	h.establish(w, r, account)
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, msgInvalidCredential)
		return
	}

	account, err := h.authService.Authenticate(r.Context(), string(model.ProviderLocal), auth.Credential{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	})
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("login failed", slog.String("error", err.Error()))
		}
		h.renderLogin(w, r, msgInvalidCredential)
		return
	}

	h.establish(w, r, account)
}

// Logout ends the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context()); err != nil {
		h.logger.Error("failed to end session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) establish(w http.ResponseWriter, r *http.Request, account *model.Account) {
	if err := h.sessions.Establish(r.Context(), account); err != nil {
		h.logger.Error("failed to establish session",
			slog.String("account_id", string(account.ID)),
			slog.String("error", err.Error()),
		)
		renderError(w, r, h.logger, http.StatusInternalServerError, "Could not sign you in. Please try again.")
		return
	}
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, text string) {
	render(w, r, h.logger, http.StatusOK, pages.Login(pages.LoginData{
		PageData:  pageData(r, "Login"),
		Text:      text,
		Providers: h.authService.Providers(),
	}))
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, registerEmail string) {
	render(w, r, h.logger, http.StatusOK, pages.Register(pages.RegisterData{
		PageData:      pageData(r, "Register"),
		RegisterEmail: registerEmail,
		Providers:     h.authService.Providers(),
	}))
}
