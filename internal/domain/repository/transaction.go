package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// It lets the use case layer run multi-step state changes atomically without
// depending on a specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs a function within a database transaction.
	// If the function returns an error, the transaction is rolled back. Otherwise, it's committed.
	// All repository operations within the function will use the same database transaction.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to a specific
// transaction, so that lockout updates, challenge mutations and token
// rotation each stay atomic at the granularity of their row.
type RepositoryFactory interface {
	// AccountRepo returns an AccountRepository bound to the current transaction.
	AccountRepo() AccountRepository

	// OtpRepo returns an OtpChallengeRepository bound to the current transaction.
	OtpRepo() OtpChallengeRepository

	// TotpRepo returns a TotpRepository bound to the current transaction.
	TotpRepo() TotpRepository

	// WebAuthnRepo returns a WebAuthnCredentialRepository bound to the current transaction.
	WebAuthnRepo() WebAuthnCredentialRepository

	// RefreshTokenRepo returns a RefreshTokenRepository bound to the current transaction.
	RefreshTokenRepo() RefreshTokenRepository

	// AppRepo returns a RegisteredAppRepository bound to the current transaction.
	AppRepo() RegisteredAppRepository

	// AuditRepo returns an AuditEventRepository bound to the current transaction.
	AuditRepo() AuditEventRepository
}
