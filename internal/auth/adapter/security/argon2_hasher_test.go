package security_test

import (
	"strings"
	"testing"

	"stashbox/internal/auth/adapter/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	hasher := security.NewArgon2Hasher()

	encoded, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := hasher.Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_SaltedHashesDiffer(t *testing.T) {
	hasher := security.NewArgon2Hasher()

	first, err := hasher.Hash("password123")
	require.NoError(t, err)
	second, err := hasher.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestArgon2Hasher_MalformedEncodingIsMismatch(t *testing.T) {
	hasher := security.NewArgon2Hasher()

	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$whatever",
		"$argon2id$v=19$m=65536,t=1,p=4$not-base64!$zzz",
	} {
		ok, err := hasher.Verify("password123", encoded)
		require.NoError(t, err)
		assert.False(t, ok, "encoding %q must not verify", encoded)
	}
}
