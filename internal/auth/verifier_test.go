package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearchart/intake/internal/shared/config"
	"github.com/clearchart/intake/internal/shared/errors"
)

const (
	testClientID = "client-id-123"
	testIssuer   = "accounts.google.com"
	testKid      = "kid-1"
)

type tokenFixture struct {
	key      *rsa.PrivateKey
	certsURL string
}

func newTokenFixture(t *testing.T) *tokenFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "token-signer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	pemCert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{testKid: string(pemCert)})
	}))
	t.Cleanup(srv.Close)

	return &tokenFixture{key: key, certsURL: srv.URL}
}

func (f *tokenFixture) sign(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKid
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "user-123",
			Audience:  jwt.ClaimStrings{testClientID},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: "jane@example.com",
	}
}

func newVerifier(f *tokenFixture) *TokenVerifier {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewTokenVerifier(config.AuthConfig{
		ClientID: testClientID,
		CertsURL: f.certsURL,
		Issuers:  []string{"accounts.google.com", "https://accounts.google.com"},
	}, log)
}

func TestVerify(t *testing.T) {
	f := newTokenFixture(t)
	v := newVerifier(f)

	identity, err := v.Verify(context.Background(), f.sign(t, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-123", identity.UserID)
	assert.Equal(t, "jane@example.com", identity.Email)
}

func TestVerifyRejections(t *testing.T) {
	f := newTokenFixture(t)
	v := newVerifier(f)

	tests := []struct {
		name   string
		mutate func(c *Claims)
	}{
		{name: "wrong audience", mutate: func(c *Claims) { c.Audience = jwt.ClaimStrings{"someone-else"} }},
		{name: "expired", mutate: func(c *Claims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) }},
		{name: "no expiry", mutate: func(c *Claims) { c.ExpiresAt = nil }},
		{name: "unknown issuer", mutate: func(c *Claims) { c.Issuer = "https://evil.example" }},
		{name: "missing subject", mutate: func(c *Claims) { c.Subject = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(&claims)

			_, err := v.Verify(context.Background(), f.sign(t, claims))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidToken), "got %v", err)
		})
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	f := newTokenFixture(t)
	v := newVerifier(f)

	_, err := v.Verify(context.Background(), "not.a.token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidToken))
}

func TestVerifyWrongKey(t *testing.T) {
	f := newTokenFixture(t)
	v := newVerifier(f)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims())
	token.Header["kid"] = testKid
	signed, err := token.SignedString(other)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidToken))
}

func TestVerifyWithoutClientID(t *testing.T) {
	f := newTokenFixture(t)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	v := NewTokenVerifier(config.AuthConfig{CertsURL: f.certsURL}, log)

	_, err := v.Verify(context.Background(), f.sign(t, validClaims()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnconfigured))
}
