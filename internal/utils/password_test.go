package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidPassword(t *testing.T) {
	assert.True(t, ValidPassword("hunter22"))
	assert.True(t, ValidPassword(strings.Repeat("a", 72)))
	assert.False(t, ValidPassword("short7!"))
	assert.False(t, ValidPassword(strings.Repeat("a", 73)))
	assert.False(t, ValidPassword(""))
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter22"))
}
