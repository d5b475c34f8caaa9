package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantAuthenticator_Authenticate(t *testing.T) {
	a := NewTenantAuthenticator(map[string]string{
		"sk-gateway-finance": "finance",
	})

	tenantID, err := a.Authenticate("sk-gateway-finance")
	require.NoError(t, err)
	assert.Equal(t, "finance", tenantID)
}

func TestTenantAuthenticator_MissingKey(t *testing.T) {
	a := NewTenantAuthenticator(nil)

	_, err := a.Authenticate("")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestTenantAuthenticator_UnknownKey(t *testing.T) {
	a := NewTenantAuthenticator(map[string]string{"sk-gateway-finance": "finance"})

	_, err := a.Authenticate("sk-gateway-bogus")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "sk-gateway-"))

	other, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}
