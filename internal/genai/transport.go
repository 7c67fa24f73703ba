package genai

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// doer abstracts the HTTP client so tests can inject their own transport.
type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// breakerDoer wraps a transport with a circuit breaker. Repeated upstream
// failures open the breaker and short-circuit further calls until the
// service recovers.
type breakerDoer struct {
	inner doer
	cb    *gobreaker.CircuitBreaker
}

func newBreakerDoer(name string, inner doer) *breakerDoer {
	return &breakerDoer{
		inner: inner,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (b *breakerDoer) Do(req *http.Request) (*http.Response, error) {
	result, err := b.cb.Execute(func() (any, error) {
		resp, err := b.inner.Do(req)
		if err != nil {
			return nil, err
		}
		// Server-side failures count against the breaker; the body is
		// captured for diagnostics before the response is discarded.
		if resp.StatusCode >= http.StatusInternalServerError {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("upstream returned %d: %s", resp.StatusCode, body)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 90 * time.Second}
}
