package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/secrets/internal/web/middleware"
	"github.com/mcoot/secrets/internal/web/sse"
)

// EventsHandler streams newly submitted secrets
type EventsHandler struct {
	feed   *sse.Hub
	logger *slog.Logger
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(feed *sse.Hub, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		feed:   feed,
		logger: logger,
	}
}

// Secrets serves the live feed behind the secrets page. Visible to everyone.
func (h *EventsHandler) Secrets(w http.ResponseWriter, r *http.Request) {
	viewer := "anonymous"
	if account := middleware.GetAccount(r.Context()); account != nil {
		viewer = string(account.ID)
	}
	sse.ServeSSE(w, r, h.feed, viewer)
}
