package account

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordProducesSaltedForm(t *testing.T) {
	stored, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	saltHex, hashHex, ok := strings.Cut(stored, ":")
	require.True(t, ok, "stored form must be salt:hash")
	assert.Len(t, saltHex, saltLength*2)
	assert.Len(t, hashHex, keyLength*2)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("same password")
	require.NoError(t, err)
	second, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must not collide")
}

func TestVerifyPassword(t *testing.T) {
	stored, err := HashPassword("s3cret-enough")
	require.NoError(t, err)

	ok, err := VerifyPassword(stored, "s3cret-enough")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(stored, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordRejectsMalformedStoredForm(t *testing.T) {
	for _, stored := range []string{"", "no-separator", "zz:zz", "abcd:not-hex"} {
		_, err := VerifyPassword(stored, "anything")
		assert.Error(t, err, "stored form %q", stored)
	}
}
