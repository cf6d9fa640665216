// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"passwordless/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrAccountNotFound is returned when no account matches the identifier.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository manages the account directory, including the lockout
// bookkeeping fields the login flow mutates.
type AccountRepository interface {
	// FindByEmail retrieves an account by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// FindByIdentifier retrieves an account whose email or phone matches the
	// login identifier.
	FindByIdentifier(ctx context.Context, identifier string) (*entity.Account, error)

	// FindByID retrieves an account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// Create persists a new account.
	Create(ctx context.Context, account *entity.Account) error

	// Update persists changes to an existing account, including failure
	// counter and lock-until mutations. Must run inside the same transaction
	// as the verification that caused them.
	Update(ctx context.Context, account *entity.Account) error
}
