package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/stringerc/syncscript-gateway/internal/cron"
	"github.com/stringerc/syncscript-gateway/internal/handlers"
	"github.com/stringerc/syncscript-gateway/internal/middleware"
	"github.com/stringerc/syncscript-gateway/internal/monitoring"
)

// SetupRoutes configures all routes for the application. Every /api/ route
// goes through the POST-only gate; OPTIONS is answered earlier by the CORS
// middleware.
func SetupRoutes(apiHandlers *handlers.APIHandlers, cronHandlers *cron.Handlers) http.Handler {
	mux := http.NewServeMux()

	// AI proxy endpoints
	mux.HandleFunc("/api/ai/chat", middleware.PostOnly(apiHandlers.ChatHandler))
	mux.HandleFunc("/api/ai/insights", middleware.PostOnly(apiHandlers.InsightsHandler))
	mux.HandleFunc("/api/ai/suggestions", middleware.PostOnly(apiHandlers.SuggestionsHandler))

	// Speech synthesis proxy
	mux.HandleFunc("/api/tts", middleware.PostOnly(apiHandlers.TTSHandler))

	// Scheduler-triggered endpoints
	mux.HandleFunc("/api/cron/cleanup-guests", middleware.PostOnly(cronHandlers.CleanupGuestsHandler))
	mux.HandleFunc("/api/cron/process-emails", middleware.PostOnly(cronHandlers.ProcessEmailsHandler))
	mux.HandleFunc("/api/cron/wakeup-call", middleware.PostOnly(cronHandlers.WakeupCallHandler))
	mux.HandleFunc("/api/cron/weekly-report", middleware.PostOnly(cronHandlers.WeeklyReportHandler))

	// Operational endpoints
	mux.HandleFunc("/health", apiHandlers.HealthHandler)
	mux.HandleFunc("/metrics", monitoring.MetricsHandler)
	monitoring.SetupPprofRoutes(mux)

	// Serve Swagger UI
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	return monitoring.MetricsMiddleware(mux)
}
