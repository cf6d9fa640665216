package postgres

import (
	"context"
	"time"

	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// refreshTokenRepository implements the repository.RefreshTokenRepository interface.
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository is the constructor for refreshTokenRepository.
func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{
		db: db,
	}
}

// Create persists a new refresh token record.
func (repo *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	tokenM := fromRefreshTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create refresh token")
	}

	// Update the entity with generated values
	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindActiveByHash retrieves the active record for a token hash. Revoked
// records surface as not-found; expired ones as expired so the caller can
// opportunistically revoke them.
func (repo *refreshTokenRepository) FindActiveByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	var tokenM model.RefreshTokenModel

	if err := repo.db.WithContext(ctx).
		Where("token_hash = ? AND revoked = ?", tokenHash, false).
		First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find refresh token by hash")
	}

	token := toRefreshTokenDomain(&tokenM)

	if token.ExpiresAt.Before(time.Now()) {
		return nil, repository.ErrRefreshTokenExpired
	}

	return token, nil
}

// Revoke marks an active record revoked by its ID. The guard on the revoked
// flag makes concurrent redeemers race for a single winner.
func (repo *refreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("id = ? AND revoked = ?", id, false).
		UpdateColumn("revoked", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to revoke refresh token")
	}

	if result.RowsAffected == 0 {
		return repository.ErrRefreshTokenNotFound
	}

	return nil
}

// RevokeByHash marks the active record for a hash revoked.
func (repo *refreshTokenRepository) RevokeByHash(ctx context.Context, tokenHash string) error {
	if err := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token_hash = ? AND revoked = ?", tokenHash, false).
		UpdateColumn("revoked", true).Error; err != nil {
		return errors.Wrap(err, "failed to revoke refresh token by hash")
	}

	return nil
}

// RevokeAllByAccountID marks every active record for the account revoked.
func (repo *refreshTokenRepository) RevokeAllByAccountID(ctx context.Context, accountID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("account_id = ? AND revoked = ?", accountID, false).
		UpdateColumn("revoked", true).Error; err != nil {
		return errors.Wrap(err, "failed to revoke account refresh tokens")
	}

	return nil
}

// FindActiveByAccountID retrieves all active records for an account.
func (repo *refreshTokenRepository) FindActiveByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.RefreshToken, error) {
	var tokenModels []*model.RefreshTokenModel

	if err := repo.db.WithContext(ctx).
		Where("account_id = ? AND revoked = ? AND expires_at > ?", accountID, false, time.Now()).
		Order("created_at DESC").
		Find(&tokenModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find refresh tokens by account")
	}

	tokens := make([]*entity.RefreshToken, 0, len(tokenModels))
	for _, tokenM := range tokenModels {
		tokens = append(tokens, toRefreshTokenDomain(tokenM))
	}

	return tokens, nil
}

// CountActiveByAccountID returns the number of active sessions for an account.
func (repo *refreshTokenRepository) CountActiveByAccountID(ctx context.Context, accountID uuid.UUID) (int, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("account_id = ? AND revoked = ? AND expires_at > ?", accountID, false, time.Now()).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count refresh tokens")
	}

	return int(count), nil
}

// --- Mapper Functions ---

func toRefreshTokenDomain(data *model.RefreshTokenModel) *entity.RefreshToken {
	if data == nil {
		return nil
	}

	return &entity.RefreshToken{
		ID:            data.ID,
		AccountID:     data.AccountID,
		TokenHash:     data.TokenHash,
		ParentTokenID: data.ParentTokenID,
		Revoked:       data.Revoked,
		ExpiresAt:     data.ExpiresAt,
		IPAddress:     data.IPAddress,
		UserAgent:     data.UserAgent,
		CreatedAt:     data.CreatedAt,
	}
}

func fromRefreshTokenDomain(data *entity.RefreshToken) *model.RefreshTokenModel {
	if data == nil {
		return nil
	}

	return &model.RefreshTokenModel{
		ID:            data.ID,
		AccountID:     data.AccountID,
		TokenHash:     data.TokenHash,
		ParentTokenID: data.ParentTokenID,
		Revoked:       data.Revoked,
		ExpiresAt:     data.ExpiresAt,
		IPAddress:     data.IPAddress,
		UserAgent:     data.UserAgent,
		CreatedAt:     data.CreatedAt,
	}
}
