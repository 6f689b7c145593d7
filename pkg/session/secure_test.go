package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSecretFromEnv(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	t.Setenv("SESSION_SECRET", secret)

	assert.Equal(t, secret, sessionSecret())
}

func TestSessionSecretRejectsShortEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "too-short")

	// 过短的密钥不采用，退化为随机密钥
	got := sessionSecret()
	assert.NotEqual(t, "too-short", got)
	assert.GreaterOrEqual(t, len(got), 32)
}

func TestSessionKeyPairsNeverEmpty(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	// securecookie的CodecsFromPairs拿到空密钥对时store没有codec，
	// 会话写入静默失败，这里必须保证至少一对
	pairs := sessionKeyPairs()
	require.Len(t, pairs, 1)
	assert.GreaterOrEqual(t, len(pairs[0]), 32)
}
