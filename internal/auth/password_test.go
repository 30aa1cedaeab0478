package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordFormat(t *testing.T) {
	stored, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	parts := strings.Split(stored, "$")
	require.Len(t, parts, 4)
	assert.Equal(t, "pbkdf2", parts[0])
	assert.Equal(t, "210000", parts[1])
	assert.NotEmpty(t, parts[2])
	assert.NotEmpty(t, parts[3])
}

func TestVerifyPasswordRoundtrip(t *testing.T) {
	// Low iteration count keeps the test fast; the format is identical.
	stored, err := hashPassword("s3cret-passw0rd", 1000)
	require.NoError(t, err)

	assert.True(t, VerifyPassword("s3cret-passw0rd", stored))
	assert.False(t, VerifyPassword("s3cret-passw0rd!", stored))
	assert.False(t, VerifyPassword("", stored))
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := hashPassword("same password", 1000)
	require.NoError(t, err)
	second, err := hashPassword("same password", 1000)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("same password", first))
	assert.True(t, VerifyPassword("same password", second))
}

func TestVerifyPasswordMalformed(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"bcrypt$10$abc$def",
		"pbkdf2$notanumber$c2FsdA==$aGFzaA==",
		"pbkdf2$0$c2FsdA==$aGFzaA==",
		"pbkdf2$1000$!!!$aGFzaA==",
		"pbkdf2$1000$c2FsdA==$",
		"pbkdf2$1000$c2FsdA==",
	}
	for _, stored := range cases {
		assert.False(t, VerifyPassword("anything", stored), "stored=%q", stored)
	}
}

func TestNewResetToken(t *testing.T) {
	token, err := NewResetToken()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(token), 43) // 32 bytes, base64url, no padding
	assert.NotContains(t, token, "=")

	other, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashTokenDeterministic(t *testing.T) {
	digest := HashToken("some-token")
	assert.Len(t, digest, 64) // sha256 hex
	assert.Equal(t, digest, HashToken("some-token"))
	assert.NotEqual(t, digest, HashToken("other-token"))
}
