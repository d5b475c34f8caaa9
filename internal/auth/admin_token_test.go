package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewAdminTokenIssuer("test-secret", time.Minute)

	token, err := issuer.Issue("ops-user")
	require.NoError(t, err)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-user", subject)
}

func TestAdminTokenIssuer_ExpiredTokenFailsVerify(t *testing.T) {
	issuer := NewAdminTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("ops-user")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestAdminTokenIssuer_WrongSecretFailsVerify(t *testing.T) {
	issuer := NewAdminTokenIssuer("test-secret", time.Minute)
	other := NewAdminTokenIssuer("different-secret", time.Minute)

	token, err := issuer.Issue("ops-user")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}
