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

// otpRepository implements the repository.OtpChallengeRepository interface.
type otpRepository struct {
	db *gorm.DB
}

// NewOtpRepository is the constructor for otpRepository.
func NewOtpRepository(db *gorm.DB) repository.OtpChallengeRepository {
	return &otpRepository{
		db: db,
	}
}

// Create persists a freshly issued challenge.
func (repo *otpRepository) Create(ctx context.Context, challenge *entity.OtpChallenge) error {
	challengeM := fromOtpDomain(challenge)

	if err := repo.db.WithContext(ctx).Create(challengeM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create otp challenge")
	}

	challenge.CreatedAt = challengeM.CreatedAt

	return nil
}

// FindBySessionID retrieves a consumable challenge by its session handle.
// Used, exhausted, and expired rows surface as not-found.
func (repo *otpRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entity.OtpChallenge, error) {
	var challengeM model.OtpChallengeModel

	if err := repo.db.WithContext(ctx).
		Where("session_id = ? AND used = ? AND attempts < max_attempts AND expires_at > ?",
			sessionID, false, time.Now()).
		First(&challengeM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOtpChallengeNotFound
		}

		return nil, errors.Wrap(err, "failed to find otp challenge by session ID")
	}

	return toOtpDomain(&challengeM), nil
}

// FindLatestByDestination retrieves the most recently issued consumable
// challenge for a destination.
func (repo *otpRepository) FindLatestByDestination(ctx context.Context, destination string) (*entity.OtpChallenge, error) {
	var challengeM model.OtpChallengeModel

	if err := repo.db.WithContext(ctx).
		Where("destination = ? AND used = ? AND attempts < max_attempts AND expires_at > ?",
			destination, false, time.Now()).
		Order("created_at DESC").
		First(&challengeM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOtpChallengeNotFound
		}

		return nil, errors.Wrap(err, "failed to find otp challenge by destination")
	}

	return toOtpDomain(&challengeM), nil
}

// FindRecentByDestination retrieves the most recently created unused,
// unexpired challenge for a destination. Consumed and expired challenges
// never block a fresh issue.
func (repo *otpRepository) FindRecentByDestination(ctx context.Context, destination string) (*entity.OtpChallenge, error) {
	var challengeM model.OtpChallengeModel

	if err := repo.db.WithContext(ctx).
		Where("destination = ? AND used = ? AND expires_at > ?", destination, false, time.Now()).
		Order("created_at DESC").
		First(&challengeM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOtpChallengeNotFound
		}

		return nil, errors.Wrap(err, "failed to find recent otp challenge")
	}

	return toOtpDomain(&challengeM), nil
}

// Update persists attempt-counter and used-flag mutations.
func (repo *otpRepository) Update(ctx context.Context, challenge *entity.OtpChallenge) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OtpChallengeModel{}).
		Where("session_id = ?", challenge.SessionID).
		Select("attempts", "used", "last_sent_at").
		Updates(fromOtpDomain(challenge))
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update otp challenge")
	}

	if result.RowsAffected == 0 {
		return repository.ErrOtpChallengeNotFound
	}

	return nil
}

// IncrementAttempts atomically bumps the attempt counter of a still
// consumable challenge.
func (repo *otpRepository) IncrementAttempts(ctx context.Context, sessionID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OtpChallengeModel{}).
		Where("session_id = ? AND used = ? AND attempts < max_attempts AND expires_at > ?",
			sessionID, false, time.Now()).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to increment otp attempts")
	}

	if result.RowsAffected == 0 {
		return repository.ErrOtpChallengeNotFound
	}

	return nil
}

// Consume atomically marks a consumable challenge used. The guard makes
// concurrent verifications race for a single winner.
func (repo *otpRepository) Consume(ctx context.Context, sessionID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OtpChallengeModel{}).
		Where("session_id = ? AND used = ? AND attempts <= max_attempts AND expires_at > ?",
			sessionID, false, time.Now()).
		UpdateColumn("used", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to consume otp challenge")
	}

	if result.RowsAffected == 0 {
		return repository.ErrOtpChallengeNotFound
	}

	return nil
}

// DeleteExpiredBefore removes challenges that expired before the cutoff.
func (repo *otpRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error {
	if err := repo.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&model.OtpChallengeModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete expired otp challenges")
	}

	return nil
}

// --- Mapper Functions ---

func toOtpDomain(data *model.OtpChallengeModel) *entity.OtpChallenge {
	if data == nil {
		return nil
	}

	return &entity.OtpChallenge{
		SessionID:   data.SessionID,
		Destination: data.Destination,
		CodeHash:    data.CodeHash,
		Attempts:    data.Attempts,
		MaxAttempts: data.MaxAttempts,
		Used:        data.Used,
		ExpiresAt:   data.ExpiresAt,
		LastSentAt:  data.LastSentAt,
		CreatedAt:   data.CreatedAt,
	}
}

func fromOtpDomain(data *entity.OtpChallenge) *model.OtpChallengeModel {
	if data == nil {
		return nil
	}

	return &model.OtpChallengeModel{
		SessionID:   data.SessionID,
		Destination: data.Destination,
		CodeHash:    data.CodeHash,
		Attempts:    data.Attempts,
		MaxAttempts: data.MaxAttempts,
		Used:        data.Used,
		ExpiresAt:   data.ExpiresAt,
		LastSentAt:  data.LastSentAt,
		CreatedAt:   data.CreatedAt,
	}
}
