package postgres

import (
	"context"

	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// totpRepository implements the repository.TotpRepository interface.
type totpRepository struct {
	db *gorm.DB
}

// NewTotpRepository is the constructor for totpRepository.
func NewTotpRepository(db *gorm.DB) repository.TotpRepository {
	return &totpRepository{
		db: db,
	}
}

// Upsert creates or overwrites the enrollment for a principal. Re-enrolling
// installs the new secret and resets the last-used step.
func (repo *totpRepository) Upsert(ctx context.Context, enrollment *entity.TotpEnrollment) error {
	enrollmentM := fromTotpDomain(enrollment)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"secret", "last_used_step", "updated_at"}),
		}).
		Create(enrollmentM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert totp enrollment")
	}

	enrollment.CreatedAt = enrollmentM.CreatedAt
	enrollment.UpdatedAt = enrollmentM.UpdatedAt

	return nil
}

// FindByUsername retrieves the enrollment for a principal.
func (repo *totpRepository) FindByUsername(ctx context.Context, username string) (*entity.TotpEnrollment, error) {
	var enrollmentM model.TotpEnrollmentModel

	if err := repo.db.WithContext(ctx).
		Where("username = ?", username).
		First(&enrollmentM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTotpNotEnrolled
		}

		return nil, errors.Wrap(err, "failed to find totp enrollment")
	}

	return toTotpDomain(&enrollmentM), nil
}

// AdvanceLastUsedStep moves the last-used step forward. The guard keeps the
// stored step strictly increasing, so concurrent verifications of the same
// code leave exactly one winner.
func (repo *totpRepository) AdvanceLastUsedStep(ctx context.Context, username string, step int64) error {
	result := repo.db.WithContext(ctx).
		Model(&model.TotpEnrollmentModel{}).
		Where("username = ? AND last_used_step < ?", username, step).
		UpdateColumn("last_used_step", step)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to advance totp step")
	}

	if result.RowsAffected == 0 {
		return repository.ErrTotpStepRegression
	}

	return nil
}

// --- Mapper Functions ---

func toTotpDomain(data *model.TotpEnrollmentModel) *entity.TotpEnrollment {
	if data == nil {
		return nil
	}

	return &entity.TotpEnrollment{
		Username:     data.Username,
		Secret:       data.Secret,
		LastUsedStep: data.LastUsedStep,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromTotpDomain(data *entity.TotpEnrollment) *model.TotpEnrollmentModel {
	if data == nil {
		return nil
	}

	return &model.TotpEnrollmentModel{
		Username:     data.Username,
		Secret:       data.Secret,
		LastUsedStep: data.LastUsedStep,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
