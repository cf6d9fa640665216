// Package otp provides secure one-time code generation.
package otp

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"

	"passwordless/config"
	"passwordless/internal/domain/service"
)

const (
	digitAlphabet  = "0123456789"
	letterAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	defaultLength = 6
)

// codeGenerator draws uniformly from its alphabet using crypto/rand.
// Rejection is handled by math/big's uniform Int, so no modulo bias.
type codeGenerator struct {
	alphabet string
	length   int
}

// NewCodeGenerator builds a generator from the configured alphabet flags.
// With both flags off it falls back to digits only.
func NewCodeGenerator(cfg *config.Config) service.OtpGenerator {
	alphabet := ""
	length := defaultLength
	if cfg.Otp != nil {
		if cfg.Otp.UseDigits {
			alphabet += digitAlphabet
		}
		if cfg.Otp.UseLetters {
			alphabet += letterAlphabet
		}
		if cfg.Otp.Length > 0 {
			length = cfg.Otp.Length
		}
	}
	if alphabet == "" {
		alphabet = digitAlphabet
	}

	return &codeGenerator{alphabet: alphabet, length: length}
}

// Generate returns a fresh code of the configured length.
func (g *codeGenerator) Generate() (string, error) {
	max := big.NewInt(int64(len(g.alphabet)))
	code := make([]byte, g.length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "read random index")
		}
		code[i] = g.alphabet[n.Int64()]
	}

	return string(code), nil
}
