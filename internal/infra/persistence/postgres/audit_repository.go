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

const defaultAuditListLimit = 100

// auditRepository implements the repository.AuditEventRepository interface.
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository is the constructor for auditRepository.
func NewAuditRepository(db *gorm.DB) repository.AuditEventRepository {
	return &auditRepository{
		db: db,
	}
}

// Create appends an audit event.
func (repo *auditRepository) Create(ctx context.Context, event *entity.AuditEvent) error {
	eventM := fromAuditDomain(event)

	if err := repo.db.WithContext(ctx).Create(eventM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create audit event")
	}

	event.ID = eventM.ID
	event.CreatedAt = eventM.CreatedAt

	return nil
}

// ListByAppID returns the most recent events for an app, newest first.
func (repo *auditRepository) ListByAppID(ctx context.Context, appID uuid.UUID, limit int) ([]*entity.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultAuditListLimit
	}

	var eventModels []*model.AuditEventModel

	if err := repo.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("created_at DESC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list audit events")
	}

	events := make([]*entity.AuditEvent, 0, len(eventModels))
	for _, eventM := range eventModels {
		events = append(events, toAuditDomain(eventM))
	}

	return events, nil
}

// --- Mapper Functions ---

func toAuditDomain(data *model.AuditEventModel) *entity.AuditEvent {
	if data == nil {
		return nil
	}

	return &entity.AuditEvent{
		ID:        data.ID,
		AppID:     data.AppID,
		Operation: data.Operation,
		Subject:   data.Subject,
		Outcome:   data.Outcome,
		IPAddress: data.IPAddress,
		CreatedAt: data.CreatedAt,
	}
}

func fromAuditDomain(data *entity.AuditEvent) *model.AuditEventModel {
	if data == nil {
		return nil
	}

	return &model.AuditEventModel{
		ID:        data.ID,
		AppID:     data.AppID,
		Operation: data.Operation,
		Subject:   data.Subject,
		Outcome:   data.Outcome,
		IPAddress: data.IPAddress,
		CreatedAt: data.CreatedAt,
	}
}
