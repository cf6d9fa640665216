// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"passwordless/config"
	"passwordless/internal/domain/service"
)

// bcryptHasher is a concrete implementation of the CodeHasher interface using bcrypt.
// One-time codes are short, so the salted slow hash is what stands between a
// database leak and a replayable code.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher is the constructor for bcryptHasher.
func NewBcryptHasher(cfg *config.Config) service.CodeHasher {
	cost := bcrypt.DefaultCost
	if cfg.Otp != nil && cfg.Otp.BcryptCost >= bcrypt.MinCost && cfg.Otp.BcryptCost <= bcrypt.MaxCost {
		cost = cfg.Otp.BcryptCost
	}

	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext code using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)

	return string(bytes), err
}

// Check compares a plaintext code with a bcrypt hash.
func (h *bcryptHasher) Check(code, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	// err is nil if the code and hash match.
	return err == nil
}
