package handler

import (
	"net/http"

	"github.com/mcoot/secrets/internal/api/middleware"
	"github.com/mcoot/secrets/internal/api/response"
)

// AccountHandler serves the signed-in account
type AccountHandler struct{}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// GetMe handles GET /api/v1/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	response.JSON(w, http.StatusOK, response.AccountFromModel(account))
}
