package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/secrets/internal/api/apierr"
	"github.com/mcoot/secrets/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging tags each API request with a request id and logs it once served
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	requestID := middleware.RequestID()
	logging := middleware.Logging(logger.With(slog.String("surface", "api")))
	return func(next http.Handler) http.Handler {
		return requestID(logging(next))
	}
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
