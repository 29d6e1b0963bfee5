package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenURLSafeAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := newToken()
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, 32)

		assert.False(t, seen[token], "token collision")
		seen[token] = true
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	token, err := newToken()
	require.NoError(t, err)

	h1 := HashToken(token)
	h2 := HashToken(token)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, token, h1)

	other, err := newToken()
	require.NoError(t, err)
	assert.NotEqual(t, HashToken(other), h1)
}
