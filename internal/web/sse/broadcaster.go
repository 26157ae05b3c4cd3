package sse

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/services/secrets"
	"github.com/mcoot/secrets/internal/web/templates/pages"
)

// Event names
const (
	EventConnected = "connected"
	EventSecret    = "secret"
)

// Broadcaster publishes submitted secrets to the feed as rendered list items
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

var _ secrets.Notifier = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// SecretSubmitted broadcasts the account's secret. Only the text is sent.
func (b *Broadcaster) SecretSubmitted(ctx context.Context, account *model.Account) {
	var buf bytes.Buffer
	if err := pages.SecretItem(account.SecretText()).Render(ctx, &buf); err != nil {
		b.logger.Error("sse failed to render secret", slog.Any("error", err))
		return
	}
	b.hub.BroadcastEvent(EventSecret, buf.String())
}
