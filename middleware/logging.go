package middleware

import (
	"context"
	"io"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const loggerContextKey contextKey = "logger"

// RequestLogger logs one line per request and stores a request scoped entry
// in the context for handlers.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := log.WithFields(logrus.Fields{
				"request_id": chimiddleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
			})

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loggerContextKey, entry)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := entry.WithFields(logrus.Fields{
				"status":   status,
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
			})
			if status >= http.StatusInternalServerError {
				fields.Warn("request failed")
				return
			}
			fields.Info("request")
		})
	}
}

// LoggerFrom returns the request scoped logger, or a discarding one outside
// a logged request.
func LoggerFrom(ctx context.Context) logrus.FieldLogger {
	if entry, ok := ctx.Value(loggerContextKey).(logrus.FieldLogger); ok {
		return entry
	}
	return discard
}

var discard = func() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}()
