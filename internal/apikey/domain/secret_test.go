package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecret(t *testing.T) {
	plain, hash, err := NewSecret("key_ABC123")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(plain, "idk_live_abc123_"))
	assert.Len(t, plain, len("idk_live_abc123_")+64)
	assert.Equal(t, HashAPIKey(plain), hash)

	other, _, err := NewSecret("key_ABC123")
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}

func TestHasKeyPrefix(t *testing.T) {
	assert.True(t, HasKeyPrefix("idk_live_x"))
	assert.False(t, HasKeyPrefix("idk_live_"))
	assert.False(t, HasKeyPrefix("sk_live_x"))
}
