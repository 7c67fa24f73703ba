// Package genai drives the external model services that turn an intake
// prompt into free-text report output.
package genai

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/clearchart/intake/internal/shared/config"
	"github.com/clearchart/intake/internal/shared/errors"
)

// Client generates free text for a prompt. Implementations translate every
// failure into a typed error; no fault escapes this boundary untyped.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Credentials holds the resolved secrets the backends need.
type Credentials struct {
	GeminiAPIKey string
	OpenAIAPIKey string
	AssistantID  string
}

// Disabled is the client used when generation secrets are absent and the
// server was allowed to start anyway.
type Disabled struct{}

// Generate always reports the missing configuration.
func (Disabled) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.Unconfigured("report generation")
}

// New selects the generation backend by configured mode.
func New(cfg config.GenerationConfig, creds Credentials, log *logrus.Logger) (Client, error) {
	switch cfg.Mode {
	case "gemini":
		return NewGemini(cfg, creds.GeminiAPIKey, log), nil
	case "assistant":
		return NewAssistant(cfg, creds.OpenAIAPIKey, creds.AssistantID, log), nil
	default:
		return nil, fmt.Errorf("unknown generation mode %q", cfg.Mode)
	}
}

// Configured reports whether the selected mode has its secrets resolved.
func Configured(mode string, creds Credentials) bool {
	switch mode {
	case "gemini":
		return creds.GeminiAPIKey != ""
	case "assistant":
		return creds.OpenAIAPIKey != "" && creds.AssistantID != ""
	default:
		return false
	}
}
