package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/secrets/internal/web/templates/pages"
)

// HomeHandler handles the home page
type HomeHandler struct {
	logger *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(logger *slog.Logger) *HomeHandler {
	return &HomeHandler{logger: logger}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, http.StatusOK, pages.Home(pages.HomeData{
		PageData: pageData(r, "Home"),
	}))
}

// NotFound renders the not found page
func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, h.logger, http.StatusNotFound, "Page not found.")
}
