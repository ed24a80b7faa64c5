// AngelaMos | 2026
// security_test.go

package core

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, rehash, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rehash)

	ok, _, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_RehashesOutdatedParams(t *testing.T) {
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("pw"), salt, 2, 32*1024, 2, argonKeyLen)
	old := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 32*1024, 2, 2,
		b64(salt), b64(key),
	)

	ok, rehash, err := VerifyPassword("pw", old)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, rehash)

	ok, again, err := VerifyPassword("pw", rehash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, again)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, h := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$aa$bb", "$argon2id$v=19$m=1,t=1,p=1$aa$"} {
		_, _, err := VerifyPassword("pw", h)
		assert.Error(t, err, h)
	}
}

func TestVerifyPasswordTimingSafe_MissingHash(t *testing.T) {
	ok, rehash, err := VerifyPasswordTimingSafe("pw", nil)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rehash)

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("pw", &empty)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshTokenHashing(t *testing.T) {
	tok, err := GenerateRefreshToken()
	require.NoError(t, err)

	other, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)

	h := HashToken(tok)
	assert.Len(t, h, 64)
	assert.True(t, CompareTokenHash(tok, h))
	assert.False(t, CompareTokenHash(other, h))
}

func b64(b []byte) string {
	return base64.RawStdEncoding.EncodeToString(b)
}
