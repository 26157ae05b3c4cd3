package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/secrets/internal/web/middleware"
	"github.com/mcoot/secrets/internal/web/templates/layout"
	"github.com/mcoot/secrets/internal/web/templates/pages"
)

// render writes component as an HTML response with the given status
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		logger.Error("failed to render page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// renderError writes the error page
func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, message string) {
	render(w, r, logger, status, pages.Error(pages.ErrorData{
		PageData: pageData(r, "Error"),
		Status:   status,
		Message:  message,
	}))
}

func pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title:   title,
		Account: middleware.GetAccount(r.Context()),
		Flash:   middleware.GetFlash(r.Context()),
	}
}
