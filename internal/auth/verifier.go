// Package auth verifies third-party identity tokens and models the
// resulting session identity.
package auth

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/clearchart/intake/internal/shared/config"
	"github.com/clearchart/intake/internal/shared/errors"
)

// Identity is the authenticated user resolved from an ID token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Verifier exchanges a submitted credential for an identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

// Claims are the ID-token claims this service consumes.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenVerifier validates RS256 ID tokens against the issuer's published
// signing certificates, checking audience, issuer and expiry.
type TokenVerifier struct {
	clientID   string
	certsURL   string
	issuers    []string
	httpClient *http.Client
	log        *logrus.Logger

	mu        sync.Mutex
	certs     map[string]any
	fetchedAt time.Time
}

// certCacheTTL bounds how long fetched signing certificates are reused.
const certCacheTTL = time.Hour

// NewTokenVerifier creates a verifier from auth config.
func NewTokenVerifier(cfg config.AuthConfig, log *logrus.Logger) *TokenVerifier {
	return &TokenVerifier{
		clientID:   cfg.ClientID,
		certsURL:   cfg.CertsURL,
		issuers:    cfg.Issuers,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Verify parses and validates the credential, returning the identity it
// asserts. Any validation failure maps to InvalidToken.
func (v *TokenVerifier) Verify(ctx context.Context, credential string) (Identity, error) {
	if v.clientID == "" {
		return Identity{}, errors.Unconfigured("auth client id")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, v.keyFunc(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		v.log.WithError(err).Warn("token verification failed")
		return Identity{}, errors.InvalidToken("invalid token")
	}

	if !v.issuerAllowed(claims.Issuer) {
		v.log.WithField("issuer", claims.Issuer).Warn("token from unexpected issuer")
		return Identity{}, errors.InvalidToken("invalid token")
	}

	if claims.Subject == "" {
		return Identity{}, errors.InvalidToken("token missing subject")
	}

	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

func (v *TokenVerifier) issuerAllowed(issuer string) bool {
	for _, allowed := range v.issuers {
		if issuer == allowed {
			return true
		}
	}
	return false
}

// keyFunc resolves the token's signing key by kid from the issuer's cert
// endpoint, refreshing the cached map when stale.
func (v *TokenVerifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no key id")
		}

		certs, err := v.signingKeys(ctx)
		if err != nil {
			return nil, err
		}
		key, ok := certs[kid]
		if !ok {
			// The issuer may have rotated keys; force one refresh.
			certs, err = v.refreshKeys(ctx)
			if err != nil {
				return nil, err
			}
			if key, ok = certs[kid]; !ok {
				return nil, fmt.Errorf("no signing key for kid %q", kid)
			}
		}
		return key, nil
	}
}

func (v *TokenVerifier) signingKeys(ctx context.Context) (map[string]any, error) {
	v.mu.Lock()
	if v.certs != nil && time.Since(v.fetchedAt) < certCacheTTL {
		certs := v.certs
		v.mu.Unlock()
		return certs, nil
	}
	v.mu.Unlock()
	return v.refreshKeys(ctx)
}

func (v *TokenVerifier) refreshKeys(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching signing certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cert endpoint returned %d", resp.StatusCode)
	}

	var raw map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding signing certs: %w", err)
	}

	certs := make(map[string]any, len(raw))
	for kid, pemCert := range raw {
		block, _ := pem.Decode([]byte(pemCert))
		if block == nil {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			continue
		}
		certs[kid] = cert.PublicKey
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("cert endpoint returned no usable keys")
	}

	v.mu.Lock()
	v.certs = certs
	v.fetchedAt = time.Now()
	v.mu.Unlock()
	return certs, nil
}
