// Package auth authenticates gateway callers by tenant API key and issues
// short-lived admin tokens for the CLI's remote mode.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when the configured credential header is
// absent from the request.
var ErrMissingCredential = errors.New("missing API key")

// ErrInvalidCredential is returned when a presented key has no tenant
// mapped to it.
var ErrInvalidCredential = errors.New("invalid API key")

// TenantAuthenticator resolves a gateway API key to the tenant it belongs
// to, using a static lookup table (configured directly or loaded from a
// config file). Production deployments would back this with a database or
// secret store instead; the lookup contract stays the same.
type TenantAuthenticator struct {
	keys map[string]string // api key -> tenant id
}

// NewTenantAuthenticator builds an authenticator from a key->tenant map.
func NewTenantAuthenticator(keys map[string]string) *TenantAuthenticator {
	if keys == nil {
		keys = map[string]string{}
	}
	return &TenantAuthenticator{keys: keys}
}

// Authenticate returns the tenant ID for apiKey, or an error describing why
// the key was rejected.
func (a *TenantAuthenticator) Authenticate(apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingCredential
	}
	tenantID, ok := a.keys[apiKey]
	if !ok {
		return "", ErrInvalidCredential
	}
	return tenantID, nil
}

// GenerateAPIKey creates a new random gateway API key in the
// "sk-gateway-<random>" shape used for tenant credentials.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return "sk-gateway-" + base64.RawURLEncoding.EncodeToString(buf), nil
}
