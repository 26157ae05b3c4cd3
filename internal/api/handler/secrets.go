package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/secrets/internal/api/apierr"
	"github.com/mcoot/secrets/internal/api/middleware"
	"github.com/mcoot/secrets/internal/api/request"
	"github.com/mcoot/secrets/internal/api/response"
	"github.com/mcoot/secrets/internal/services/secrets"
)

// SecretsHandler serves the secrets resource
type SecretsHandler struct {
	secretsService *secrets.Service
	logger         *slog.Logger
}

// NewSecretsHandler creates a new SecretsHandler
func NewSecretsHandler(secretsService *secrets.Service, logger *slog.Logger) *SecretsHandler {
	return &SecretsHandler{
		secretsService: secretsService,
		logger:         logger,
	}
}

// List handles GET /api/v1/secrets
func (h *SecretsHandler) List(w http.ResponseWriter, r *http.Request) {
	texts, err := h.secretsService.Texts(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "failed to list secrets", err)
		return
	}

	response.JSON(w, http.StatusOK, response.SecretList{
		Secrets: texts,
		Count:   len(texts),
	})
}

// Submit handles PUT /api/v1/me/secret
func (h *SecretsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.SubmitSecret
	body := http.MaxBytesReader(w, r.Body, request.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, h.logger, "submit body too large", apierr.NewRequestTooLargeError())
			return
		}
		writeError(w, r, h.logger, "invalid submit body", apierr.NewInvalidRequestError("Invalid JSON body"))
		return
	}

	updated, err := h.secretsService.Submit(r.Context(), account.ID, req.Secret)
	if err != nil {
		writeError(w, r, h.logger, "failed to submit secret", err,
			slog.String("account_id", string(account.ID)))
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(updated))
}
