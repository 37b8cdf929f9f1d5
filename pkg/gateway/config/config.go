package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthMode string

const (
	AuthModeRequired AuthMode = "required"
	AuthModeOptional AuthMode = "optional"
	AuthModeDisabled AuthMode = "disabled"
)

type Config struct {
	Addr string

	AuthMode AuthMode
	APIKeys  map[string]struct{}

	// If true, client identity may be derived from proxy headers like
	// X-Forwarded-For. Enable only behind a trusted proxy/LB.
	TrustProxyHeaders bool

	MaxBodyBytes int64

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// PostgreSQL connection string.
	DatabaseURL string

	// Prompt enhancement.
	GeminiAPIKey string
	PromptModel  string

	// Voice-agent vendor. When AgentAPIKey is empty, session creation
	// falls back to placeholder ids and the simulated agent serves them.
	AgentBaseURL      string
	AgentWSURL        string
	AgentAPIKey       string
	AgentDialTimeout  time.Duration
	PlaceholderPrefix string

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	HandlerTimeout      time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                envOr("INSIGHTLAB_ADDR", ":8080"),
		AuthMode:            AuthMode(envOr("INSIGHTLAB_AUTH_MODE", string(AuthModeRequired))),
		APIKeys:             make(map[string]struct{}),
		TrustProxyHeaders:   envBoolOr("INSIGHTLAB_TRUST_PROXY_HEADERS", false),
		MaxBodyBytes:        envInt64Or("INSIGHTLAB_MAX_BODY_BYTES", 4<<20), // 4 MiB
		CORSAllowedOrigins:  make(map[string]struct{}),
		DatabaseURL:         os.Getenv("INSIGHTLAB_DATABASE_URL"),
		GeminiAPIKey:        os.Getenv("INSIGHTLAB_GEMINI_API_KEY"),
		PromptModel:         envOr("INSIGHTLAB_PROMPT_MODEL", "gemini-2.0-flash"),
		AgentBaseURL:        envOr("INSIGHTLAB_AGENT_BASE_URL", "https://api.vapi.ai"),
		AgentWSURL:          envOr("INSIGHTLAB_AGENT_WS_URL", "wss://api.vapi.ai"),
		AgentAPIKey:         os.Getenv("INSIGHTLAB_AGENT_API_KEY"),
		AgentDialTimeout:    envDurationOr("INSIGHTLAB_AGENT_DIAL_TIMEOUT", 15*time.Second),
		PlaceholderPrefix:   envOr("INSIGHTLAB_PLACEHOLDER_PREFIX", "sim-"),
		ReadHeaderTimeout:   envDurationOr("INSIGHTLAB_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:         envDurationOr("INSIGHTLAB_READ_TIMEOUT", 30*time.Second),
		HandlerTimeout:      envDurationOr("INSIGHTLAB_TOTAL_REQUEST_TIMEOUT", 2*time.Minute),
		ShutdownGracePeriod: envDurationOr("INSIGHTLAB_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	switch cfg.AuthMode {
	case AuthModeRequired, AuthModeOptional, AuthModeDisabled:
	default:
		return Config{}, fmt.Errorf("INSIGHTLAB_AUTH_MODE must be one of required|optional|disabled")
	}

	for _, key := range splitCSV(os.Getenv("INSIGHTLAB_API_KEYS")) {
		cfg.APIKeys[key] = struct{}{}
	}

	for _, origin := range splitCSV(os.Getenv("INSIGHTLAB_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("INSIGHTLAB_MAX_BODY_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("INSIGHTLAB_DATABASE_URL must be set")
	}
	if strings.TrimSpace(cfg.AgentBaseURL) == "" {
		return Config{}, fmt.Errorf("INSIGHTLAB_AGENT_BASE_URL must not be empty")
	}
	if strings.TrimSpace(cfg.AgentWSURL) == "" {
		return Config{}, fmt.Errorf("INSIGHTLAB_AGENT_WS_URL must not be empty")
	}
	if cfg.AgentDialTimeout <= 0 {
		return Config{}, fmt.Errorf("INSIGHTLAB_AGENT_DIAL_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(cfg.PlaceholderPrefix) == "" {
		return Config{}, fmt.Errorf("INSIGHTLAB_PLACEHOLDER_PREFIX must not be empty")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("INSIGHTLAB_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("INSIGHTLAB_READ_TIMEOUT must be > 0")
	}
	if cfg.HandlerTimeout <= 0 {
		return Config{}, fmt.Errorf("INSIGHTLAB_TOTAL_REQUEST_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("INSIGHTLAB_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	if cfg.AuthMode == AuthModeRequired && len(cfg.APIKeys) == 0 {
		return Config{}, fmt.Errorf("INSIGHTLAB_API_KEYS must be set when INSIGHTLAB_AUTH_MODE=required")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
