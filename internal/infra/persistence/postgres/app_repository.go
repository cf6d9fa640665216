package postgres

import (
	"context"

	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// appRepository implements the repository.RegisteredAppRepository interface.
type appRepository struct {
	db *gorm.DB
}

// NewAppRepository is the constructor for appRepository.
func NewAppRepository(db *gorm.DB) repository.RegisteredAppRepository {
	return &appRepository{
		db: db,
	}
}

// Create persists a new registered app.
func (repo *appRepository) Create(ctx context.Context, app *entity.RegisteredApp) error {
	appM := fromAppDomain(app)

	if err := repo.db.WithContext(ctx).Create(appM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrAppAlreadyExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create registered app")
	}

	// Update the entity with generated values
	app.ID = appM.ID
	app.CreatedAt = appM.CreatedAt
	app.UpdatedAt = appM.UpdatedAt

	return nil
}

// FindByAPIKeyHash retrieves an active app by the hash of its API key.
func (repo *appRepository) FindByAPIKeyHash(ctx context.Context, apiKeyHash string) (*entity.RegisteredApp, error) {
	var appM model.RegisteredAppModel

	if err := repo.db.WithContext(ctx).
		Where("api_key_hash = ? AND active = ?", apiKeyHash, true).
		First(&appM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAppNotFound
		}

		return nil, errors.Wrap(err, "failed to find app by api key hash")
	}

	return toAppDomain(&appM), nil
}

// FindByID retrieves an app by its unique ID.
func (repo *appRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RegisteredApp, error) {
	var appM model.RegisteredAppModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&appM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAppNotFound
		}

		return nil, errors.Wrap(err, "failed to find app by ID")
	}

	return toAppDomain(&appM), nil
}

// Update persists changes to an existing app.
func (repo *appRepository) Update(ctx context.Context, app *entity.RegisteredApp) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RegisteredAppModel{}).
		Where("id = ?", app.ID).
		Select("description", "active", "rate_limit_per_minute", "rate_limit_per_hour", "last_used_at").
		Updates(fromAppDomain(app))
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update registered app")
	}

	if result.RowsAffected == 0 {
		return repository.ErrAppNotFound
	}

	return nil
}

// List returns all registered apps.
func (repo *appRepository) List(ctx context.Context) ([]*entity.RegisteredApp, error) {
	var appModels []*model.RegisteredAppModel

	if err := repo.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&appModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list registered apps")
	}

	apps := make([]*entity.RegisteredApp, 0, len(appModels))
	for _, appM := range appModels {
		apps = append(apps, toAppDomain(appM))
	}

	return apps, nil
}

// --- Mapper Functions ---

func toAppDomain(data *model.RegisteredAppModel) *entity.RegisteredApp {
	if data == nil {
		return nil
	}

	return &entity.RegisteredApp{
		ID:                 data.ID,
		Name:               data.Name,
		Description:        data.Description,
		APIKeyHash:         data.APIKeyHash,
		Active:             data.Active,
		RateLimitPerMinute: data.RateLimitPerMinute,
		RateLimitPerHour:   data.RateLimitPerHour,
		LastUsedAt:         data.LastUsedAt,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}

func fromAppDomain(data *entity.RegisteredApp) *model.RegisteredAppModel {
	if data == nil {
		return nil
	}

	return &model.RegisteredAppModel{
		ID:                 data.ID,
		Name:               data.Name,
		Description:        data.Description,
		APIKeyHash:         data.APIKeyHash,
		Active:             data.Active,
		RateLimitPerMinute: data.RateLimitPerMinute,
		RateLimitPerHour:   data.RateLimitPerHour,
		LastUsedAt:         data.LastUsedAt,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}
