package admin

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const requestIDKey contextKey = "request-id"

// requestIDMiddleware stamps every request with a UUID, used to correlate
// an admin request with the log lines it produced.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger writes basic request info using structured logging.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if log != nil {
				log.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": r.Context().Value(requestIDKey),
				}).Info("admin request")
			}
			next.ServeHTTP(w, r)
		})
	}
}
