package repository

import (
	"context"
	"errors"

	"clinic-booking-service/internal/domain/entity"
	domainRepo "clinic-booking-service/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	return db.WithContext(ctx).Create(log).Error
}

// FindAll returns newest entries first
func (r *auditLogRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AuditLogFilter) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	query := db.WithContext(ctx).Preload("User")

	if filter != nil {
		if filter.Action != "" {
			query = query.Where("action = ?", filter.Action)
		}
		if filter.Limit > 0 && filter.EntityID == "" {
			query = query.Limit(filter.Limit)
		}
	}

	err := query.Order("id DESC").Find(&logs).Error
	if err != nil {
		return nil, err
	}

	if filter != nil && filter.EntityID != "" {
		logs = filterByEntityID(logs, filter.EntityID)
		if filter.Limit > 0 && len(logs) > filter.Limit {
			logs = logs[:filter.Limit]
		}
	}
	return logs, nil
}

func (r *auditLogRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	var log entity.AuditLog
	err := db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// Metadata is stored as jsonb on Postgres and as text elsewhere, so the
// entity id match is done in memory.
func filterByEntityID(logs []entity.AuditLog, entityID string) []entity.AuditLog {
	filtered := logs[:0]
	for _, l := range logs {
		if id, ok := l.Metadata["entity_id"].(string); ok && id == entityID {
			filtered = append(filtered, l)
		}
	}
	return filtered
}
