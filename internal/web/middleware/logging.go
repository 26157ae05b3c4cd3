package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/secrets/internal/middleware"
)

// Logging tags each page request with a request id and logs it once served
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	requestID := middleware.RequestID()
	logging := middleware.Logging(logger.With(slog.String("surface", "web")))
	return func(next http.Handler) http.Handler {
		return requestID(logging(next))
	}
}
