// Package totp wraps RFC 6238 time-based one-time code generation and
// verification.
package totp

import (
	"crypto/subtle"
	"time"

	"github.com/pkg/errors"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"passwordless/config"
	"passwordless/internal/domain/service"
)

type provider struct {
	issuer string
	period uint
	digits otp.Digits
	skew   uint
}

// NewProvider builds the TOTP provider from configuration. Zero values fall
// back to the standard 30-second, six-digit scheme with one step of skew.
func NewProvider(cfg *config.Config) service.TotpProvider {
	p := &provider{
		issuer: "passwordless",
		period: 30,
		digits: otp.DigitsSix,
		skew:   1,
	}
	if cfg.Totp != nil {
		if cfg.Totp.Issuer != "" {
			p.issuer = cfg.Totp.Issuer
		}
		if cfg.Totp.Period > 0 {
			p.period = cfg.Totp.Period
		}
		if cfg.Totp.Digits == 8 {
			p.digits = otp.DigitsEight
		}
		if cfg.Totp.Skew > 0 {
			p.skew = cfg.Totp.Skew
		}
	}

	return p
}

// Enroll generates a fresh shared secret and the provisioning URI an
// authenticator app scans.
func (p *provider) Enroll(username string) (*service.TotpProvisioning, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: username,
		Period:      p.period,
		Digits:      p.digits,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generate totp key")
	}

	return &service.TotpProvisioning{
		Secret: key.Secret(),
		URI:    key.URL(),
	}, nil
}

// MatchStep checks the code against each candidate step in the skew window
// centered on now. The library's Validate hides which step matched, so the
// expected code is generated per step and compared in constant time. The
// returned step lets the caller reject codes from already-used steps.
func (p *provider) MatchStep(secret, code string, now time.Time) (int64, bool, error) {
	current := now.Unix() / int64(p.period)
	for offset := -int64(p.skew); offset <= int64(p.skew); offset++ {
		step := current + offset
		if step < 0 {
			continue
		}
		expected, err := totp.GenerateCodeCustom(secret, time.Unix(step*int64(p.period), 0), totp.ValidateOpts{
			Period:    p.period,
			Digits:    p.digits,
			Algorithm: otp.AlgorithmSHA1,
		})
		if err != nil {
			return 0, false, errors.Wrap(err, "generate expected code")
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return step, true, nil
		}
	}

	return 0, false, nil
}
