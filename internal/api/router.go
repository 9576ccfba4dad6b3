package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"webdesk/internal/agent"
	"webdesk/internal/chat"
	"webdesk/internal/config"
	"webdesk/internal/telemetry"
)

// Server holds all dependencies for the HTTP server.
type Server struct {
	config    *config.Config
	chat      *chat.Service
	telemetry *telemetry.Store
}

// NewServer creates a new server with all dependencies. The collector
// receives telemetry from every request; store may be nil when no archive is
// configured.
func NewServer(cfg *config.Config, collector telemetry.Collector, store *telemetry.Store) *Server {
	client := agent.NewClient(cfg.AgentBin)
	chatSvc := chat.NewService(client, collector, chat.Config{
		MaxTurns:   cfg.AgentMaxTurns,
		Model:      cfg.AgentModel,
		ToolPreset: cfg.AgentToolPreset,
		WorkDir:    cfg.AgentWorkDir,
	})

	return &Server{
		config:    cfg,
		chat:      chatSvc,
		telemetry: store,
	}
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(srv *Server) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(RecovererMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   srv.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if srv.config.ShellToken != "" {
		r.Use(AuthMiddleware(srv.config.ShellToken))
	}

	// Chat routes
	r.Post("/api/chat", srv.handleChatStream)

	// Telemetry routes
	r.Get("/api/telemetry/events", srv.handleTelemetryEvents)

	// Health probe
	r.Get("/api/health", srv.handleHealth)

	return r
}
