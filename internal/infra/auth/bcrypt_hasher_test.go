package auth

import (
	"testing"

	"passwordless/config"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func testHasher(cost int) *bcryptHasher {
	cfg := &config.Config{Otp: &config.OtpConfig{BcryptCost: cost}}

	return NewBcryptHasher(cfg).(*bcryptHasher)
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := testHasher(bcrypt.MinCost)

	code := "482913"
	hash, err := hasher.Hash(code)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, code, hash)

	// Verify the hash can be checked
	assert.True(t, hasher.Check(code, hash))
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := testHasher(bcrypt.MinCost)
	code := "482913"

	hash, err := hasher.Hash(code)
	assert.NoError(t, err)

	// Test correct code
	assert.True(t, hasher.Check(code, hash))

	// Test incorrect code
	assert.False(t, hasher.Check("000000", hash))

	// Test empty code
	assert.False(t, hasher.Check("", hash))
}

func TestBcryptHasher_CostClamped(t *testing.T) {
	// Out-of-range configured cost falls back to the bcrypt default.
	hasher := testHasher(99)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)

	hasher = testHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}
