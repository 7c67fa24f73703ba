package secrets

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Well-known logical secret names.
const (
	OpenAIAPIKey      = "openai-api-key"
	OpenAIAssistantID = "openai-assistant-id"
	GeminiAPIKey      = "gemini-api-key"
)

// Resolver resolves logical secret names, checking environment variables
// first and falling back to the store. Resolved values are cached for the
// process lifetime; rotation requires a restart.
type Resolver struct {
	store Store
	log   *logrus.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver creates a resolver. A nil store degrades to env-only lookup.
func NewResolver(store Store, log *logrus.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   log,
		cache: make(map[string]string),
	}
}

// EnvName maps a logical secret name to its environment variable form,
// e.g. "openai-api-key" -> "OPENAI_API_KEY".
func EnvName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Resolve returns the value of a named secret, or empty string when it is
// absent everywhere.
func (r *Resolver) Resolve(ctx context.Context, name string) string {
	r.mu.Lock()
	if v, ok := r.cache[name]; ok {
		r.mu.Unlock()
		return v
	}
	r.mu.Unlock()

	value := strings.TrimSpace(os.Getenv(EnvName(name)))
	if value == "" && r.store != nil {
		v, err := r.store.Access(ctx, name)
		if err != nil {
			r.log.WithError(err).WithField("secret", name).Warn("secret store lookup failed")
		} else {
			value = strings.TrimSpace(v)
		}
	}

	if value != "" {
		r.mu.Lock()
		r.cache[name] = value
		r.mu.Unlock()
		r.log.WithField("secret", name).Debug("secret resolved")
	} else {
		r.log.WithField("secret", name).Warn("secret not found in environment or store")
	}
	return value
}
