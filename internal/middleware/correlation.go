package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

// RequestCorrelationMiddleware attaches request and correlation IDs to every
// request (client-provided header first, generated fallback), echoes them in
// response headers, and logs a structured request/response pair.
func RequestCorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(utils.HeaderRequestID)
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}
		correlationID := r.Header.Get(utils.HeaderCorrelationID)
		if correlationID == "" {
			correlationID = utils.GenerateCorrelationID()
		}

		w.Header().Set(utils.HeaderRequestID, requestID)
		w.Header().Set(utils.HeaderCorrelationID, correlationID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		ctx = logger.WithCorrelationID(ctx, correlationID)

		// Health checks are too frequent to be worth a log line each
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		start := time.Now()
		logger.InfoCtx(ctx, "Incoming request",
			"request_method", r.Method,
			"request_path", r.URL.Path,
			"request_client_ip", clientIP(r),
			"request_headers", utils.SanitizeHeaders(r.Header),
		)

		wrapper := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r.WithContext(ctx))

		duration := time.Since(start)
		if wrapper.status >= 400 {
			logger.WarnCtx(ctx, "Request failed",
				"response_status", wrapper.status,
				"response_duration_ms", duration.Milliseconds(),
				"request_path", r.URL.Path,
			)
		} else {
			logger.InfoCtx(ctx, "Request completed",
				"response_status", wrapper.status,
				"response_duration_ms", duration.Milliseconds(),
				"request_path", r.URL.Path,
			)
		}
	})
}

// clientIP extracts the client IP with a proxy-aware priority cascade
func clientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get(utils.HeaderXForwardedFor); forwardedFor != "" {
		return strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
	}
	if realIP := r.Header.Get(utils.HeaderXRealIP); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
