package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/stringerc/syncscript-gateway/internal/translate"
)

// startTime tracks when the application started
var startTime = time.Now()

// HealthResponse represents the structured health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Services  map[string]string      `json:"services"`
	Details   map[string]interface{} `json:"details"`
}

// HealthHandler reports service health
// @Summary      Health check endpoint
// @Description  Returns structured health information including per-integration configuration state
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse "Structured health response"
// @Router       /health [get]
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "unknown"
	}

	services := make(map[string]string)
	overallStatus := "healthy"

	// A misconfigured integration degrades its endpoints but the gateway
	// as a whole keeps serving
	integrationChecks := map[string]error{
		"chat_upstream":     h.Config.DeepSeek.Check(),
		"tts_upstream":      h.Config.TTS.Check(),
		"identity_provider": h.Config.Supabase.CheckAuth(),
		"functions":         h.Config.Supabase.CheckFunctions(),
		"telephony":         h.Config.Twilio.Check(),
		"cron_gate":         h.Config.Cron.Check(),
	}
	for name, err := range integrationChecks {
		if err != nil {
			services[name] = "unconfigured"
			overallStatus = "degraded"
		} else {
			services[name] = "up"
		}
	}

	if h.Dispatcher == nil {
		services["dispatcher"] = "down"
		overallStatus = "unhealthy"
	} else {
		services["dispatcher"] = "up"
	}

	if !h.Audit.Enabled() {
		services["audit"] = "disabled"
	} else if err := h.Audit.HealthCheck(r.Context()); err != nil {
		services["audit"] = "unhealthy"
		if overallStatus == "healthy" {
			overallStatus = "degraded"
		}
	} else {
		services["audit"] = "up"
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	translate.WriteJSON(w, statusCode, HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
		Details: map[string]interface{}{
			"version": version,
			"uptime":  int64(time.Since(startTime).Seconds()),
		},
	})
}
