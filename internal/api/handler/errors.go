package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/secrets/internal/api/apierr"
	"github.com/mcoot/secrets/internal/middleware"
)

// writeError sends the error envelope. Client errors are expected traffic;
// anything mapping to a 5xx is logged with the request id first.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		attrs = append(attrs,
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		logger.LogAttrs(r.Context(), slog.LevelError, msg, attrs...)
	}
	apierr.WriteError(w, err)
}
