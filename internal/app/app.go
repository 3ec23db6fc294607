package app

import (
	"context"
	"net/http"

	"github.com/stringerc/syncscript-gateway/internal/audit"
	"github.com/stringerc/syncscript-gateway/internal/auth"
	"github.com/stringerc/syncscript-gateway/internal/config"
	"github.com/stringerc/syncscript-gateway/internal/cron"
	"github.com/stringerc/syncscript-gateway/internal/dispatch"
	"github.com/stringerc/syncscript-gateway/internal/handlers"
	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/router"
)

// App holds the application components and wires them together.
type App struct {
	Config      *config.Config
	Dispatcher  dispatch.Dispatcher
	Audit       *audit.Store
	APIHandlers *handlers.APIHandlers
	CronHandler *cron.Handlers
}

// NewApp creates and initializes a new application instance.
func NewApp(ctx context.Context) (*App, error) {
	if err := config.LoadEnvFromMultiplePaths(); err != nil {
		logger.Debug("No environment file loaded", "error", err)
	}

	cfg := config.Load()
	for _, err := range cfg.Validate() {
		logger.Warn("Configuration incomplete", "reason", err.Error())
	}

	auditCfg := audit.ConfigFromEnv()
	auditStore, err := audit.NewStore(ctx, auditCfg)
	if err != nil {
		logger.Warn("Audit store unavailable, continuing without it",
			"error", err,
			"uri", auditCfg.MaskedURI())
		auditStore = audit.NewDisabledStore()
	}

	dispatcher := dispatch.NewHTTPDispatcher()
	guard := auth.NewGuard(auth.NewSupabaseResolver(cfg.Supabase))
	secretGuard := auth.NewSecretGuard(cfg.Cron)

	apiHandlers := handlers.NewAPIHandlers(cfg, dispatcher, guard, auditStore)
	cronHandlers := cron.NewHandlers(cfg, dispatcher, secretGuard, auditStore)

	logger.Info("Application initialized",
		"port", cfg.Server.Port,
		"audit_enabled", auditStore.Enabled())

	return &App{
		Config:      cfg,
		Dispatcher:  dispatcher,
		Audit:       auditStore,
		APIHandlers: apiHandlers,
		CronHandler: cronHandlers,
	}, nil
}

// SetupRoutes returns the configured HTTP handler for the application.
func (a *App) SetupRoutes() http.Handler {
	return router.SetupRoutes(a.APIHandlers, a.CronHandler)
}

// Shutdown releases resources held by the application.
func (a *App) Shutdown(ctx context.Context) {
	if a.Audit != nil {
		if err := a.Audit.Close(ctx); err != nil {
			logger.Warn("Failed to close audit store", "error", err)
		}
	}
}
