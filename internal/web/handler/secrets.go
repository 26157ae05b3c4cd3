package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/services/secrets"
	"github.com/mcoot/secrets/internal/services/session"
	"github.com/mcoot/secrets/internal/web/middleware"
	"github.com/mcoot/secrets/internal/web/templates/pages"
)

// maxFormBytes bounds the submit form body
const maxFormBytes = 64 << 10

var tooLongMessage = fmt.Sprintf("Your secret must be at most %d characters.", secrets.MaxSecretLength)

// SecretsHandler handles listing and submitting secrets
type SecretsHandler struct {
	secretsService *secrets.Service
	sessions       *session.Manager
	logger         *slog.Logger
}

// NewSecretsHandler creates a new SecretsHandler
func NewSecretsHandler(secretsService *secrets.Service, sessions *session.Manager, logger *slog.Logger) *SecretsHandler {
	return &SecretsHandler{
		secretsService: secretsService,
		sessions:       sessions,
		logger:         logger,
	}
}

// List renders every submitted secret. Visible to everyone.
func (h *SecretsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.secretsService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list secrets", slog.String("error", err.Error()))
		renderError(w, r, h.logger, http.StatusServiceUnavailable, "Secrets are unavailable right now. Please try again later.")
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.Secrets(pages.SecretsData{
		PageData:   pageData(r, "Secrets"),
		AllSecrets: accounts,
	}))
}

// SubmitPage renders the submission form
func (h *SecretsHandler) SubmitPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, http.StatusOK, pages.Submit(pages.SubmitData{
		PageData:  pageData(r, "Submit"),
		MaxLength: secrets.MaxSecretLength,
	}))
}

// Submit overwrites the signed-in account's secret
func (h *SecretsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sessions.Flash(r.Context(), tooLongMessage)
		}
		http.Redirect(w, r, "/submit", http.StatusSeeOther)
		return
	}

	_, err := h.secretsService.Submit(r.Context(), account.ID, r.FormValue("secret"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/secrets", http.StatusSeeOther)
	case errors.Is(err, secrets.ErrEmptySecret):
		h.sessions.Flash(r.Context(), "Your secret cannot be empty.")
		http.Redirect(w, r, "/submit", http.StatusSeeOther)
	case errors.Is(err, secrets.ErrSecretTooLong):
		h.sessions.Flash(r.Context(), tooLongMessage)
		http.Redirect(w, r, "/submit", http.StatusSeeOther)
	case errors.Is(err, model.ErrAccountNotFound):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	default:
		h.logger.Error("failed to submit secret",
			slog.String("account_id", string(account.ID)),
			slog.String("error", err.Error()),
		)
		renderError(w, r, h.logger, http.StatusServiceUnavailable, "Your secret could not be saved. Please try again later.")
	}
}
