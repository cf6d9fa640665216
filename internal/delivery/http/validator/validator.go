// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	domainerrors "passwordless/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

type echoValidator struct {
	validate *validator.Validate
}

// New creates the request validator installed on the echo server.
func New() *echoValidator {
	return &echoValidator{validate: validator.New()}
}

// Validate checks struct tags and maps failures onto the shared validation error.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	return nil
}
