package signing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour)

	token, expiresAt, err := signer.Generate("REQ-1700000000000-042")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	requestID, parsedExp, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "REQ-1700000000000-042", requestID)
	assert.Equal(t, expiresAt.Unix(), parsedExp.Unix())
}

func TestTokenRejectsTampering(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour)

	token, _, err := signer.Generate("REQ-1700000000000-042")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[2] = strings.Repeat("0", len(parts[2]))
	_, _, err = signer.Parse(strings.Join(parts, "."))
	assert.Error(t, err)

	_, _, err = signer.Parse("not-a-token")
	assert.Error(t, err)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	signer := NewTokenSigner("secret-a", time.Hour)
	other := NewTokenSigner("secret-b", time.Hour)

	token, _, err := signer.Generate("REQ-1700000000000-001")
	require.NoError(t, err)

	_, _, err = other.Parse(token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	signer := NewTokenSigner("test-secret", -time.Minute)
	signer.ttl = -time.Minute

	token, _, err := signer.Generate("REQ-1700000000000-001")
	require.NoError(t, err)

	_, _, err = signer.Parse(token)
	assert.Error(t, err)
}

func TestGenerateRequiresInput(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour)
	_, _, err := signer.Generate("")
	assert.Error(t, err)

	empty := NewTokenSigner("", time.Hour)
	_, _, err = empty.Generate("REQ-1-001")
	assert.Error(t, err)
}
