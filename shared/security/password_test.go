package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	passwords := []string{"Password1", "correct horse battery staple", "p@sSw0rd!", "日本語のパスワード1A"}

	for _, password := range passwords {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		require.NotEmpty(t, hash)
		assert.NotContains(t, hash, password)

		ok, err := VerifyPassword(password, hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestHashPasswordEmbedsSalt(t *testing.T) {
	first, err := HashPassword("Password1")
	require.NoError(t, err)

	second, err := HashPassword("Password1")
	require.NoError(t, err)

	// Two hashes of the same password must differ because each embeds a
	// fresh salt.
	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("Password1")
	require.NoError(t, err)

	ok, err := VerifyPassword("Password2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	malformed := []string{"", "not-a-hash", "$argon2id$v=19$truncated"}

	for _, hash := range malformed {
		ok, err := VerifyPassword("Password1", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}
