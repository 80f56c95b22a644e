package password_test

import (
	"testing"

	"elc/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, password.Verify("correct horse battery", hash))
	assert.ErrorIs(t, password.Verify("wrong horse", hash), password.ErrInvalidPassword)

	other, err := password.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salted hashes differ")
}

func TestHash_Empty(t *testing.T) {
	_, err := password.Hash("")
	assert.ErrorIs(t, err, password.ErrEmptyPassword)
}

func TestVerify_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		password string
		hash     string
	}{
		{name: "empty password", password: "", hash: "$2a$10$abc"},
		{name: "empty hash", password: "secret", hash: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, password.Verify(tt.password, tt.hash), password.ErrInvalidPassword)
		})
	}

	err := password.Verify("secret", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, password.ErrInvalidPassword)
}

func TestNeedsRehash(t *testing.T) {
	current, err := password.Hash("secret123")
	require.NoError(t, err)
	assert.False(t, password.NeedsRehash(current))

	weak, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, password.NeedsRehash(string(weak)))

	assert.False(t, password.NeedsRehash("garbage"))
}
