package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPasswordArgon2id(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)

	check := VerifyPassword(hash, "s3cret-passphrase")
	assert.True(t, check.Matched)
	assert.Equal(t, SchemeArgon2id, check.Scheme)

	check = VerifyPassword(hash, "wrong")
	assert.False(t, check.Matched)
}

func TestVerifyPasswordLegacyPlainText(t *testing.T) {
	check := VerifyPassword("s3cret-passphrase", "s3cret-passphrase")
	assert.True(t, check.Matched)
	assert.Equal(t, SchemeLegacyPlainText, check.Scheme)

	check = VerifyPassword("s3cret-passphrase", "different")
	assert.False(t, check.Matched)
}

func TestVerifyPasswordEmptyStoredNeverMatches(t *testing.T) {
	assert.False(t, VerifyPassword("", "").Matched)
	assert.False(t, VerifyPassword("", "anything").Matched)
}
