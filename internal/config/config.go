// Package config handles loading and validating configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerAddr is the HTTP listen address (e.g., :80, :8080).
	ServerAddr string
	// ShellToken is the bearer token for API authentication. Auth is
	// disabled when empty.
	ShellToken string
	// AllowedOrigins lists the origins accepted by CORS.
	AllowedOrigins []string
	// LogLevel sets the log verbosity (debug, info, warn, error).
	LogLevel string
	// LogJSON switches log output to JSON formatting.
	LogJSON bool
	// SentryDSN enables Sentry reporting when set.
	SentryDSN string
	// SentryEnvironment tags Sentry events with a deployment environment.
	SentryEnvironment string
	// TelemetryDB is the SQLite path for the telemetry archive. The archive
	// is disabled when empty.
	TelemetryDB string
	// AgentBin is the agent CLI binary name or path.
	AgentBin string
	// AgentModel overrides the agent's default model when set.
	AgentModel string
	// AgentMaxTurns bounds one agent run.
	AgentMaxTurns int
	// AgentToolPreset selects the tool preset passed to the agent CLI.
	AgentToolPreset string
	// AgentWorkDir is the working directory for agent runs.
	AgentWorkDir string
	// MaxConns caps concurrent client connections.
	MaxConns int
}

// Load reads configuration from environment variables.
// It loads .env file if present, but environment variables take precedence.
func Load() (*Config, error) {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr:        os.Getenv("SERVER_ADDR"),
		ShellToken:        os.Getenv("SHELL_TOKEN"),
		AllowedOrigins:    parseCSV(os.Getenv("ALLOWED_ORIGINS")),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: os.Getenv("SENTRY_ENVIRONMENT"),
		TelemetryDB:       os.Getenv("TELEMETRY_DB"),
		AgentBin:          os.Getenv("AGENT_BIN"),
		AgentModel:        os.Getenv("AGENT_MODEL"),
		AgentToolPreset:   os.Getenv("AGENT_TOOL_PRESET"),
		AgentWorkDir:      os.Getenv("AGENT_WORKDIR"),
	}
	cfg.LogJSON = parseBoolEnv("LOG_JSON", false)
	cfg.AgentMaxTurns = parseIntEnv("AGENT_MAX_TURNS", 10)
	cfg.MaxConns = parseIntEnv("MAX_CONNS", 256)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fills in defaults for unset fields.
func (c *Config) Validate() error {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SentryEnvironment == "" {
		c.SentryEnvironment = "production"
	}
	if c.AgentToolPreset == "" {
		c.AgentToolPreset = "all"
	}
	if c.AgentWorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.AgentWorkDir = wd
		}
	}
	// ShellToken is optional - auth is disabled without it
	// SentryDSN is optional - Sentry reporting is disabled without it
	// TelemetryDB is optional - the archive endpoint is disabled without it
	// AgentBin is optional - the agent client falls back to its default
	return nil
}

func parseCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseIntEnv(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
