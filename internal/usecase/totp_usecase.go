package usecase

import "context"

// EnrollTotpInput defines the data required to enroll an authenticator app.
type EnrollTotpInput struct {
	Username string
	QRSize   int
}

// EnrollTotpOutput returns the provisioning material for the authenticator
// app. Re-enrolling replaces any previous secret.
type EnrollTotpOutput struct {
	Secret    string
	URI       string
	QRCodePNG []byte
}

// TotpUsecase defines the interface for authenticator-app enrollment.
// Verification is part of the login flow in AuthUsecase.
type TotpUsecase interface {
	Enroll(ctx context.Context, input EnrollTotpInput) (*EnrollTotpOutput, error)
}
