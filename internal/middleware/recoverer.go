package middleware

import (
	"net/http"
	"runtime/debug"

	"agency-backend/internal/logger"
	"agency-backend/internal/models"
)

// Recoverer turns a handler panic into a JSON internal_error response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.Log.Errorw("panic recovered",
				"panic", rec,
				"path", r.URL.Path,
				"request_id", r.Header.Get(RequestIDHeader),
				"stack", string(debug.Stack()),
			)
			writeError(w, models.ErrInternal)
		}()

		next.ServeHTTP(w, r)
	})
}
