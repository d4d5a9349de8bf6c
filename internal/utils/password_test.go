package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("swordfish1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "swordfish1", hash)

	assert.True(t, VerifyPassword(hash, "swordfish1"))
	assert.False(t, VerifyPassword(hash, "swordfish2"))
	assert.False(t, VerifyPassword("not-a-hash", "swordfish1"))
}
