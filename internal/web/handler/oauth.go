package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/services/auth"
	"github.com/mcoot/secrets/internal/services/session"
)

const stateCookieName = "oauthstate"

// OAuthHandler runs the redirect round trip with an OAuth2 provider
type OAuthHandler struct {
	authService   *auth.Service
	stateSigner   *auth.StateSigner
	sessions      *session.Manager
	logger        *slog.Logger
	secureCookies bool
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(authService *auth.Service, stateSigner *auth.StateSigner, sessions *session.Manager, logger *slog.Logger, secureCookies bool) *OAuthHandler {
	return &OAuthHandler{
		authService:   authService,
		stateSigner:   stateSigner,
		sessions:      sessions,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// Begin redirects to the provider's consent page
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	redirector, ok := h.authService.Redirector(provider)
	if !ok {
		renderError(w, r, h.logger, http.StatusNotFound, "Unknown sign-in provider.")
		return
	}

	state, nonce, err := h.stateSigner.Issue(model.Provider(provider))
	if err != nil {
		h.logger.Error("failed to issue oauth state",
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
		renderError(w, r, h.logger, http.StatusInternalServerError, "Could not start sign-in. Please try again.")
		return
	}

	h.setStateCookie(w, nonce, int(h.stateSigner.TTL()/time.Second))
	http.Redirect(w, r, redirector.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the flow started by Begin
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	if _, ok := h.authService.Redirector(provider); !ok {
		renderError(w, r, h.logger, http.StatusNotFound, "Unknown sign-in provider.")
		return
	}

	// The nonce is single use
	var nonce string
	if cookie, err := r.Cookie(stateCookieName); err == nil {
		nonce = cookie.Value
	}
	h.setStateCookie(w, "", -1)

	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		h.fail(w, r, provider, errors.New(reason))
		return
	}

	if err := h.stateSigner.Verify(query.Get("state"), model.Provider(provider), nonce); err != nil {
		h.fail(w, r, provider, err)
		return
	}

	account, err := h.authService.Authenticate(r.Context(), provider, auth.Credential{Code: query.Get("code")})
	if err != nil {
		h.fail(w, r, provider, err)
		return
	}

	if err := h.sessions.Establish(r.Context(), account); err != nil {
		h.fail(w, r, provider, err)
		return
	}
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request, provider string, err error) {
	h.logger.Warn("oauth sign-in failed",
		slog.String("provider", provider),
		slog.String("error", err.Error()),
	)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *OAuthHandler) setStateCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     "/auth/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
