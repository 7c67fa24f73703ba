package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Auth       AuthConfig
	Generation GenerationConfig
	Secrets    SecretsConfig
	Logging    LoggingConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port      int
	Env       string
	StaticDir string
}

// AuthConfig holds identity-token verification settings.
type AuthConfig struct {
	// ClientID is the expected audience of submitted ID tokens
	ClientID string
	// CertsURL serves the issuer's signing certificates (kid -> PEM)
	CertsURL string
	// Issuers lists the accepted token issuers
	Issuers []string
	// SessionTTL bounds how long an authenticated session stays valid
	SessionTTL time.Duration
}

// GenerationConfig selects and tunes the report generation backend.
type GenerationConfig struct {
	// Mode: "gemini" for the synchronous model call, "assistant" for the
	// asynchronous job-polling backend
	Mode string
	// GeminiBaseURL is the generative language API root
	GeminiBaseURL string
	// GeminiModel names the hosted model used in gemini mode
	GeminiModel string
	// AssistantBaseURL is the assistants API root
	AssistantBaseURL string
	// PollInterval is the fixed delay between run status checks
	PollInterval time.Duration
	// Deadline bounds one generation job from start to completion
	Deadline time.Duration
	// Required makes startup fail when generation secrets are absent;
	// otherwise the server starts with generation disabled
	Required bool
}

type SecretsConfig struct {
	// StoreURL points at the secret store service; empty disables the store
	// and secrets resolve from environment variables only
	StoreURL string
	// StoreToken authenticates against the secret store
	StoreToken string
	// InitMaxElapsed bounds the store client initialization retries
	InitMaxElapsed time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:      getEnvInt("SERVER_PORT", 8080),
			Env:       getEnv("ENV", "development"),
			StaticDir: getEnv("STATIC_DIR", "static"),
		},
		Auth: AuthConfig{
			ClientID:   getEnv("GOOGLE_CLIENT_ID", ""),
			CertsURL:   getEnv("AUTH_CERTS_URL", "https://www.googleapis.com/oauth2/v1/certs"),
			Issuers:    getEnvSlice("AUTH_ISSUERS", []string{"accounts.google.com", "https://accounts.google.com"}),
			SessionTTL: getEnvDuration("SESSION_TTL", 12*time.Hour),
		},
		Generation: GenerationConfig{
			Mode:             getEnv("GENERATION_MODE", "assistant"),
			GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-pro"),
			AssistantBaseURL: getEnv("ASSISTANT_BASE_URL", "https://api.openai.com"),
			PollInterval:     getEnvDuration("GENERATION_POLL_INTERVAL", time.Second),
			Deadline:         getEnvDuration("GENERATION_DEADLINE", 60*time.Second),
			Required:         getEnvBool("GENERATION_REQUIRED", false),
		},
		Secrets: SecretsConfig{
			StoreURL:       getEnv("SECRET_STORE_URL", ""),
			StoreToken:     getEnv("SECRET_STORE_TOKEN", ""),
			InitMaxElapsed: getEnvDuration("SECRET_STORE_INIT_MAX_ELAPSED", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvInt("RATE_LIMIT_RPS", 5),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, part := range splitString(value, ",") {
			trimmed := trimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

func splitString(s, sep string) []string {
	if s == "" {
		return nil
	}
	var result []string
	start := 0
	for i := 0; i <= len(s)-len(sep); i++ {
		if s[i:i+len(sep)] == sep {
			result = append(result, s[start:i])
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	result = append(result, s[start:])
	return result
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
