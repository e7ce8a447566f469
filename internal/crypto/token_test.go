package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, TokenBytes)

	other, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashToken(t *testing.T) {
	hash := HashToken("refresh-token")

	// SHA256 хеш всегда 64 символа hex
	assert.Regexp(t, "^[a-f0-9]{64}$", hash)
	assert.Equal(t, hash, HashToken("refresh-token"))
	assert.NotEqual(t, hash, HashToken("refresh-token2"))
}

func TestHashToken_KnownVector(t *testing.T) {
	// sha256("abc")
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		HashToken("abc"),
	)
}
