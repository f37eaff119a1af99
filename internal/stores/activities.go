package stores

import (
	"context"

	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// DefaultActivityLimit caps the recent-activity feed.
const DefaultActivityLimit = 5

// ActivityStore owns the append-only audit log. Entries are written once
// and never updated or deleted by normal operation.
type ActivityStore struct {
	db *gorm.DB
}

func NewActivityStore(db *gorm.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Record appends one audit entry. It fails only when the underlying
// storage is unavailable; the error is propagated, not retried here.
func (s *ActivityStore) Record(ctx context.Context, owner uuid.UUID, action, taskTitle, details, oldStatus, newStatus string) (*models.Activity, error) {
	if !models.ValidAction(action) {
		return nil, models.NewError(models.ErrCodeValidation, "invalid activity action")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to generate activity ID", err)
	}

	activity := models.Activity{
		ID:        id,
		UserID:    owner,
		Action:    action,
		TaskTitle: taskTitle,
		Details:   details,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to record activity", err)
	}
	return &activity, nil
}

// Recent returns up to limit entries for the owner, newest first. A
// non-positive limit falls back to DefaultActivityLimit.
func (s *ActivityStore) Recent(ctx context.Context, owner uuid.UUID, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to load activities", err)
	}
	return activities, nil
}
