// Package main is the entry point for the webdesk server.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"

	"webdesk/internal/api"
	"webdesk/internal/config"
	"webdesk/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	setupLogging(cfg)

	if cfg.ShellToken == "" {
		logrus.Warn("SHELL_TOKEN not set, authentication disabled")
	}

	// Telemetry sinks
	collectors := []telemetry.Collector{telemetry.NewLog()}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		})
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize Sentry")
		}
		defer sentry.Flush(2 * time.Second)
		collectors = append(collectors, telemetry.NewSentry())
	}

	var store *telemetry.Store
	if cfg.TelemetryDB != "" {
		store, err = telemetry.OpenStore(cfg.TelemetryDB)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to open telemetry archive")
		}
		defer store.Close()
		collectors = append(collectors, store)
	}

	// Create server
	srv := api.NewServer(cfg, telemetry.Multi(collectors), store)
	router := api.NewRouter(srv)

	// Create HTTP server
	httpServer := &http.Server{
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // Disable for streaming
		IdleTimeout:  120 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen")
	}
	listener = netutil.LimitListener(listener, cfg.MaxConns)

	// Start server in goroutine
	go func() {
		logrus.WithField("addr", cfg.ServerAddr).Info("Server starting")
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("Server forced to shutdown")
	}

	logrus.Info("Server stopped")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		logrus.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
	}
	logrus.SetLevel(level)
	if cfg.LogJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
