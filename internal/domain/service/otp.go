package service

import "context"

// OtpGenerator produces one-time codes from a cryptographically secure
// random source. The alphabet and length are fixed at construction.
type OtpGenerator interface {
	Generate() (string, error)
}

// OtpSender delivers a one-time code to its destination (phone number or
// email address). Implementations decide the transport; the engine only
// cares that delivery was accepted.
type OtpSender interface {
	Send(ctx context.Context, destination string, code string) error
}
