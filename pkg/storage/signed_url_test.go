package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerSignAndVerify(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("exp-1", "documents/exp-1.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	obj, err := signer.Verify(token, false)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", obj.ExportID)
	assert.Equal(t, "documents/exp-1.csv", obj.Path)
	assert.True(t, expiresAt.Equal(obj.ExpiresAt))
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Sign("exp-1", "documents/exp-1.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Verify(token, false)
	assert.ErrorIs(t, err, ErrTokenExpired)

	obj, err := signer.Verify(token, true)
	require.NoError(t, err)
	assert.Equal(t, "documents/exp-1.csv", obj.Path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Sign("exp-1", "documents/exp-1.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "exp-2"
	_, err = signer.Verify(strings.Join(parts, "."), false)
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = signer.Verify("not-a-token", false)
	assert.ErrorIs(t, err, ErrMalformedToken)

	other := NewSignedURLSigner("other", time.Hour)
	_, err = other.Verify(token, false)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestSignedURLSignerRequiresSecret(t *testing.T) {
	_, _, err := NewSignedURLSigner("", time.Hour).Sign("exp-1", "a.csv")
	assert.Error(t, err)
}
