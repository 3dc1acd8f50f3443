package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
)

// HeaderRequestID carries the request id in both directions
const HeaderRequestID = "X-Request-ID"

// LoggingMiddleware assigns a request id and logs every request on completion
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := observability.WithRequestID(r.Context(), requestID)

		rw := newStatusRecorder(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		logger := observability.LoggerFromContext(ctx)
		event := logger.Info()
		if rw.statusCode >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", time.Since(start)).
			Str("data_source", rw.Header().Get("X-Data-Source")).
			Msg("request completed")
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
