package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_NeverPlaintext(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)
	require.NotContains(t, hash, "hunter2")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)

	require.True(t, VerifyPassword("hunter2", hash))
	require.False(t, VerifyPassword("wrong", hash))
	require.False(t, VerifyPassword("hunter2", "not-a-bcrypt-hash"))
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, h1, h2, "bcrypt salts per hash")
}
