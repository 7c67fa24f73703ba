// Package secrets resolves named credentials from the environment and an
// optional secret store service.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Store fetches a secret value by logical name. Absence is reported as an
// error; callers decide whether that is fatal.
type Store interface {
	Access(ctx context.Context, name string) (string, error)
}

// HTTPStore is a bearer-token JSON client for a secret store service.
type HTTPStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPStore creates a store client and verifies the service is reachable,
// retrying with exponential backoff up to maxElapsed.
func NewHTTPStore(ctx context.Context, baseURL, token string, maxElapsed time.Duration) (*HTTPStore, error) {
	s := &HTTPStore{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed

	err := backoff.Retry(func() error {
		return s.ping(ctx)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, fmt.Errorf("secret store unreachable: %w", err)
	}
	return s, nil
}

func (s *HTTPStore) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("secret store health returned %d", resp.StatusCode)
	}
	return nil
}

type secretPayload struct {
	Value string `json:"value"`
}

// Access fetches the latest version of a named secret.
func (s *HTTPStore) Access(ctx context.Context, name string) (string, error) {
	u := fmt.Sprintf("%s/v1/secrets/%s/versions/latest", s.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("secret %q not found", name)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("secret store returned %d for %q", resp.StatusCode, name)
	}

	var payload secretPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding secret %q: %w", name, err)
	}
	return payload.Value, nil
}
