package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter22"))
}

func TestHashPasswordCostOutOfRange(t *testing.T) {
	for _, cost := range []int{0, bcrypt.MaxCost + 1} {
		hash, err := HashPassword("hunter22", cost)
		require.NoError(t, err)
		got, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, got)
	}
}

func TestHashPasswordWrapsError(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73), 4)
	require.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
	assert.Contains(t, err.Error(), "hash password")
}
