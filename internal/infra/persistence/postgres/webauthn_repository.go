package postgres

import (
	"context"
	"strings"
	"time"

	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// webauthnRepository implements the repository.WebAuthnCredentialRepository interface.
type webauthnRepository struct {
	db *gorm.DB
}

// NewWebAuthnRepository is the constructor for webauthnRepository.
func NewWebAuthnRepository(db *gorm.DB) repository.WebAuthnCredentialRepository {
	return &webauthnRepository{
		db: db,
	}
}

// Create persists a credential produced by a registration ceremony.
func (repo *webauthnRepository) Create(ctx context.Context, credential *entity.WebAuthnCredential) error {
	credentialM := fromWebAuthnDomain(credential)

	if err := repo.db.WithContext(ctx).Create(credentialM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create webauthn credential")
	}

	credential.CreatedAt = credentialM.CreatedAt
	credential.UpdatedAt = credentialM.UpdatedAt

	return nil
}

// FindByCredentialID retrieves a credential by its authenticator-supplied identifier.
func (repo *webauthnRepository) FindByCredentialID(ctx context.Context, credentialID string) (*entity.WebAuthnCredential, error) {
	var credentialM model.WebAuthnCredentialModel

	if err := repo.db.WithContext(ctx).
		Where("credential_id = ?", credentialID).
		First(&credentialM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrWebAuthnCredentialNotFound
		}

		return nil, errors.Wrap(err, "failed to find webauthn credential")
	}

	return toWebAuthnDomain(&credentialM), nil
}

// FindByUsername retrieves all credentials registered for a principal.
func (repo *webauthnRepository) FindByUsername(ctx context.Context, username string) ([]*entity.WebAuthnCredential, error) {
	var credentialModels []*model.WebAuthnCredentialModel

	if err := repo.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at ASC").
		Find(&credentialModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find webauthn credentials by username")
	}

	credentials := make([]*entity.WebAuthnCredential, 0, len(credentialModels))
	for _, credentialM := range credentialModels {
		credentials = append(credentials, toWebAuthnDomain(credentialM))
	}

	return credentials, nil
}

// AdvanceSignCount updates the signature counter, guarded so the stored
// value only ever increases. A zero presented counter only refreshes
// last_used_at on rows that are still at zero, which is how counter-less
// authenticators behave.
func (repo *webauthnRepository) AdvanceSignCount(ctx context.Context, credentialID string, signCount uint32) error {
	now := time.Now()

	query := repo.db.WithContext(ctx).Model(&model.WebAuthnCredentialModel{})
	if signCount == 0 {
		query = query.Where("credential_id = ? AND sign_count = 0", credentialID).
			UpdateColumns(map[string]any{"last_used_at": now, "updated_at": now})
	} else {
		query = query.Where("credential_id = ? AND sign_count < ?", credentialID, signCount).
			UpdateColumns(map[string]any{"sign_count": signCount, "last_used_at": now, "updated_at": now})
	}
	if query.Error != nil {
		return errors.Wrap(query.Error, "failed to advance webauthn sign count")
	}

	if query.RowsAffected == 0 {
		return repository.ErrWebAuthnCounterRegression
	}

	return nil
}

// --- Mapper Functions ---

func toWebAuthnDomain(data *model.WebAuthnCredentialModel) *entity.WebAuthnCredential {
	if data == nil {
		return nil
	}

	var transports []string
	if data.Transports != "" {
		transports = strings.Split(data.Transports, ",")
	}

	return &entity.WebAuthnCredential{
		CredentialID:    data.CredentialID,
		Username:        data.Username,
		PublicKey:       data.PublicKey,
		AttestationType: data.AttestationType,
		Transports:      transports,
		SignCount:       data.SignCount,
		UserVerified:    data.UserVerified,
		BackupEligible:  data.BackupEligible,
		BackedUp:        data.BackedUp,
		LastUsedAt:      data.LastUsedAt,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

func fromWebAuthnDomain(data *entity.WebAuthnCredential) *model.WebAuthnCredentialModel {
	if data == nil {
		return nil
	}

	return &model.WebAuthnCredentialModel{
		CredentialID:    data.CredentialID,
		Username:        data.Username,
		PublicKey:       data.PublicKey,
		AttestationType: data.AttestationType,
		Transports:      strings.Join(data.Transports, ","),
		SignCount:       data.SignCount,
		UserVerified:    data.UserVerified,
		BackupEligible:  data.BackupEligible,
		BackedUp:        data.BackedUp,
		LastUsedAt:      data.LastUsedAt,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}
