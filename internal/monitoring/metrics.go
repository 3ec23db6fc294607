package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

// Metrics holds in-process application metrics
type Metrics struct {
	mu                    sync.RWMutex
	RequestCount          int64
	RequestDuration       time.Duration
	ErrorCount            int64
	EndpointRequestCounts map[string]int64
	UpstreamOutcomeCounts map[string]int64
	StatusCodeCounts      map[int]int64
	StartTime             time.Time
}

// Global metrics instance
var globalMetrics = &Metrics{
	EndpointRequestCounts: make(map[string]int64),
	UpstreamOutcomeCounts: make(map[string]int64),
	StatusCodeCounts:      make(map[int]int64),
	StartTime:             time.Now(),
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a handled request with its duration and status
func (m *Metrics) RecordRequest(endpoint string, duration time.Duration, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RequestCount++
	m.RequestDuration += duration
	m.StatusCodeCounts[statusCode]++
	if endpoint != "" {
		m.EndpointRequestCounts[endpoint]++
	}
	if statusCode >= 400 {
		m.ErrorCount++
	}
}

// RecordUpstreamOutcome records the classified outcome of an upstream
// dispatch, keyed "service:outcome"
func (m *Metrics) RecordUpstreamOutcome(service, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpstreamOutcomeCounts[service+":"+outcome]++
}

// GetStats returns a snapshot of current statistics
func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uptime := time.Since(m.StartTime)
	avgDuration := time.Duration(0)
	if m.RequestCount > 0 {
		avgDuration = m.RequestDuration / time.Duration(m.RequestCount)
	}

	endpointCounts := make(map[string]int64, len(m.EndpointRequestCounts))
	for k, v := range m.EndpointRequestCounts {
		endpointCounts[k] = v
	}
	outcomeCounts := make(map[string]int64, len(m.UpstreamOutcomeCounts))
	for k, v := range m.UpstreamOutcomeCounts {
		outcomeCounts[k] = v
	}
	statusCounts := make(map[int]int64, len(m.StatusCodeCounts))
	for k, v := range m.StatusCodeCounts {
		statusCounts[k] = v
	}

	errorRate := float64(0)
	if m.RequestCount > 0 {
		errorRate = float64(m.ErrorCount) / float64(m.RequestCount)
	}

	return map[string]interface{}{
		"uptime_seconds":      uptime.Seconds(),
		"total_requests":      m.RequestCount,
		"total_errors":        m.ErrorCount,
		"average_duration_ms": avgDuration.Milliseconds(),
		"error_rate":          errorRate,
		"endpoint_requests":   endpointCounts,
		"upstream_outcomes":   outcomeCounts,
		"status_code_counts":  statusCounts,
		"start_time":          m.StartTime.Format(time.RFC3339),
	}
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RequestCount = 0
	m.RequestDuration = 0
	m.ErrorCount = 0
	m.EndpointRequestCounts = make(map[string]int64)
	m.UpstreamOutcomeCounts = make(map[string]int64)
	m.StatusCodeCounts = make(map[int]int64)
	m.StartTime = time.Now()
}

// MetricsHandler serves the metrics snapshot as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := globalMetrics.GetStats()

	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		logger.Error("Failed to write metrics response", "error", err)
	}
}

// MetricsMiddleware records request counts and durations per endpoint
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		globalMetrics.RecordRequest(r.URL.Path, time.Since(start), wrapper.statusCode)
	})
}

// SetupPprofRoutes registers pprof endpoints for performance profiling
func SetupPprofRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

// metricsResponseWriter captures the status code for metrics
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
