package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	ActionTaskCreated   = "task_created"
	ActionTaskUpdated   = "task_updated"
	ActionTaskDeleted   = "task_deleted"
	ActionStatusChanged = "status_changed"
)

// Activity is one immutable audit record of a task mutation. TaskTitle is
// a point-in-time copy, never a live reference: the task may be soft
// deleted or edited later and the entry must not change retroactively.
type Activity struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_activities_user_created"`
	Action    string    `json:"action" gorm:"not null"`
	TaskTitle string    `json:"taskTitle" gorm:"not null"`
	Details   string    `json:"details"`
	OldStatus string    `json:"oldStatus,omitempty"`
	NewStatus string    `json:"newStatus,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_activities_user_created"`
}

// ValidAction reports whether a is a recordable audit action.
func ValidAction(a string) bool {
	switch a {
	case ActionTaskCreated, ActionTaskUpdated, ActionTaskDeleted, ActionStatusChanged:
		return true
	}
	return false
}
