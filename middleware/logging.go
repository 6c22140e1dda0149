package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"brandflowAPI/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with a request id and logs its outcome.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			entry := log.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(logging.WithEntry(r.Context(), entry)))

			entry = entry.WithFields(logrus.Fields{
				"status":      ww.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			switch {
			case ww.statusCode >= 500:
				entry.Error("request failed")
			case ww.statusCode >= 400:
				entry.Info("request rejected")
			default:
				entry.Debug("request served")
			}
		})
	}
}
