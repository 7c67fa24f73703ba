package secrets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSecretService(t *testing.T, secrets map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /v1/secrets/{name}/versions/latest", func(w http.ResponseWriter, r *http.Request) {
		v, ok := secrets[r.PathValue("name")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"value": v})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStoreAccess(t *testing.T) {
	srv := newSecretService(t, map[string]string{"openai-api-key": "sk-test"})

	store, err := NewHTTPStore(context.Background(), srv.URL, "token", 5*time.Second)
	require.NoError(t, err)

	got, err := store.Access(context.Background(), "openai-api-key")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", got)
}

func TestHTTPStoreAccessMissing(t *testing.T) {
	srv := newSecretService(t, map[string]string{})

	store, err := NewHTTPStore(context.Background(), srv.URL, "token", 5*time.Second)
	require.NoError(t, err)

	_, err = store.Access(context.Background(), "openai-api-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestNewHTTPStoreRetriesUntilHealthy(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	_, err := NewHTTPStore(context.Background(), srv.URL, "", 10*time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, attempts, 3)
}

func TestNewHTTPStoreGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewHTTPStore(context.Background(), srv.URL, "", 200*time.Millisecond)
	require.Error(t, err)
}
