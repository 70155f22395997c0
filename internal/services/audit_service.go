package services

import (
	"context"
	"errors"
	"time"

	"github.com/bookscope/bookscope/internal/models"
	"gorm.io/gorm"
)

// ErrEntityNotFound signals that a soft-delete/restore target does not
// exist in the expected state (active for delete, deleted for restore).
// It is a contract result, not a failure: a second delete of the same
// row is a safe no-op that reports it.
var ErrEntityNotFound = errors.New("entity not found")

// ErrUnknownEntityType signals an entity type outside the audited set.
var ErrUnknownEntityType = errors.New("unknown entity type")

// AuditService hides and unhides entities without destroying data and
// serves reads partitioned by active/deleted state, plus the audit
// trail queries.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// SoftDelete tombstones an active entity. The deleted_at filter is
// re-checked in the UPDATE itself, so of two concurrent deletes at most
// one transitions the row; the loser sees ErrEntityNotFound.
func (s *AuditService) SoftDelete(ctx context.Context, entityType string, id uint, actorID *uint) (models.Auditable, error) {
	entity, ok := models.NewAuditedEntity(entityType)
	if !ok {
		return nil, ErrUnknownEntityType
	}
	err := s.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(entity).
		Where("deleted_at IS NULL").
		Updates(map[string]interface{}{"deleted_at": now, "updated_by": actorID})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrEntityNotFound
	}
	if err := s.db.WithContext(ctx).First(entity, id).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

// Restore clears the tombstone of a deleted entity. Restoring does not
// reconstruct prior field values; it only reopens the row. An already
// active (or missing) entity yields ErrEntityNotFound.
func (s *AuditService) Restore(ctx context.Context, entityType string, id uint, actorID *uint) (models.Auditable, error) {
	entity, ok := models.NewAuditedEntity(entityType)
	if !ok {
		return nil, ErrUnknownEntityType
	}
	err := s.db.WithContext(ctx).Where("id = ? AND deleted_at IS NOT NULL", id).First(entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(entity).
		Where("deleted_at IS NOT NULL").
		Updates(map[string]interface{}{"deleted_at": nil, "updated_by": actorID})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrEntityNotFound
	}
	if err := s.db.WithContext(ctx).First(entity, id).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

// GetActive returns an entity by id, excluding soft-deleted rows.
func (s *AuditService) GetActive(ctx context.Context, entityType string, id uint) (models.Auditable, error) {
	entity, ok := models.NewAuditedEntity(entityType)
	if !ok {
		return nil, ErrUnknownEntityType
	}
	err := s.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetAllActive lists active entities in insertion order.
func (s *AuditService) GetAllActive(ctx context.Context, entityType string, skip, limit int) (interface{}, error) {
	return s.list(ctx, entityType, "deleted_at IS NULL", skip, limit)
}

// GetDeleted lists soft-deleted entities in insertion order.
func (s *AuditService) GetDeleted(ctx context.Context, entityType string, skip, limit int) (interface{}, error) {
	return s.list(ctx, entityType, "deleted_at IS NOT NULL", skip, limit)
}

func (s *AuditService) list(ctx context.Context, entityType, cond string, skip, limit int) (interface{}, error) {
	slice, ok := models.NewAuditedSlice(entityType)
	if !ok {
		return nil, ErrUnknownEntityType
	}
	err := s.db.WithContext(ctx).Where(cond).
		Order("id").Offset(skip).Limit(limit).
		Find(slice).Error
	if err != nil {
		return nil, err
	}
	return slice, nil
}

func (s *AuditService) CountActive(ctx context.Context, entityType string) (int64, error) {
	return s.count(ctx, entityType, "deleted_at IS NULL")
}

func (s *AuditService) CountDeleted(ctx context.Context, entityType string) (int64, error) {
	return s.count(ctx, entityType, "deleted_at IS NOT NULL")
}

func (s *AuditService) count(ctx context.Context, entityType, cond string) (int64, error) {
	entity, ok := models.NewAuditedEntity(entityType)
	if !ok {
		return 0, ErrUnknownEntityType
	}
	var n int64
	err := s.db.WithContext(ctx).Model(entity).Where(cond).Count(&n).Error
	return n, err
}

// GetEntityAuditHistory returns the audit trail of one entity, newest
// entries first.
func (s *AuditService) GetEntityAuditHistory(ctx context.Context, entityType string, entityID uint, skip, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GetUserAuditHistory returns the changes a given actor made, newest first.
func (s *AuditService) GetUserAuditHistory(ctx context.Context, userID uint, skip, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GetRecentAuditLogs returns entries from the last N days, newest first.
func (s *AuditService) GetRecentAuditLogs(ctx context.Context, days, skip, limit int) ([]models.AuditLog, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	var logs []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&logs).Error
	return logs, err
}
