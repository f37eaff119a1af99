package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

const (
	TitleMinLen       = 3
	TitleMaxLen       = 100
	DescriptionMinLen = 5
	DescriptionMaxLen = 500
)

type Task struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Status      string    `json:"status" gorm:"not null;default:'pending'"`
	DueDate     time.Time `json:"due_date" gorm:"not null"`
	IsDeleted   bool      `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidStatus reports whether s is one of the three lifecycle states.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// IsOverdue reports whether the task is past its due date. A completed
// task is never overdue regardless of date. Comparison is at day
// granularity; keep this consistent with duedate.ClassifyTask.
func (t *Task) IsOverdue() bool {
	if t.Status == StatusCompleted {
		return false
	}
	return StartOfDay(t.DueDate).Before(StartOfDay(time.Now()))
}

// DaysUntilDue returns whole days between now and the due date, negative
// when overdue. Both ends are normalized to midnight first.
func (t *Task) DaysUntilDue(now time.Time) int {
	diff := StartOfDay(t.DueDate).Sub(StartOfDay(now))
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}

// StartOfDay strips the time-of-day component in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
