package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stringerc/syncscript-gateway/internal/app"
	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/middleware"

	_ "github.com/stringerc/syncscript-gateway/docs"
)

func main() {
	// Initialize structured logging
	if err := logger.InitFromEnv(); err != nil {
		// Can't use logger here as it failed to initialize
		_, _ = os.Stderr.WriteString("FATAL: Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create and initialize the application
	application, err := app.NewApp(ctx)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Get router with all routes configured, then apply the outer middleware
	handler := application.SetupRoutes()
	handler = middleware.RequestCorrelationMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	serverCfg := application.Config.Server
	addr := serverCfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
	}

	go func() {
		logger.Info("Server starting", "address", addr)
		logger.Info("Swagger documentation available", "path", "/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	application.Shutdown(shutdownCtx)
	logger.Info("Server stopped")
}
