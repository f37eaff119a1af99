package models_test

import (
	"testing"
	"time"

	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
)

func TestValidStatus(t *testing.T) {
	for _, status := range []string{"pending", "in-progress", "completed"} {
		if !models.ValidStatus(status) {
			t.Errorf("Expected %q to be a valid status", status)
		}
	}
	for _, status := range []string{"", "done", "PENDING", "archived"} {
		if models.ValidStatus(status) {
			t.Errorf("Expected %q to be rejected", status)
		}
	}
}

func TestTask_IsOverdue(t *testing.T) {
	task := models.Task{
		ID:      uuid.Must(uuid.NewV4()),
		UserID:  uuid.Must(uuid.NewV4()),
		Status:  models.StatusPending,
		DueDate: time.Now().AddDate(0, 0, -1),
	}

	if !task.IsOverdue() {
		t.Error("Expected task due yesterday to be overdue")
	}

	task.Status = models.StatusCompleted
	if task.IsOverdue() {
		t.Error("Expected completed task to never be overdue")
	}

	task.Status = models.StatusInProgress
	task.DueDate = time.Now()
	if task.IsOverdue() {
		t.Error("Expected task due today to not be overdue")
	}
}

func TestTask_DaysUntilDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"due today late evening", time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), 0},
		{"due today early morning", time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC), 0},
		{"due tomorrow", time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), 1},
		{"due in three days", time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC), 3},
		{"overdue by one day", time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC), -1},
	}

	for _, tt := range tests {
		task := models.Task{DueDate: tt.due}
		if got := task.DaysUntilDue(now); got != tt.want {
			t.Errorf("%s: DaysUntilDue = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestValidAction(t *testing.T) {
	for _, action := range []string{"task_created", "task_updated", "task_deleted", "status_changed"} {
		if !models.ValidAction(action) {
			t.Errorf("Expected %q to be a valid action", action)
		}
	}
	if models.ValidAction("task_restored") {
		t.Error("Expected unknown action to be rejected")
	}
}

func TestIsCode(t *testing.T) {
	err := models.NewError(models.ErrCodeValidation, "bad input")
	if !models.IsCode(err, models.ErrCodeValidation) {
		t.Error("Expected IsCode to match the error's own code")
	}
	if models.IsCode(err, models.ErrCodeNotFound) {
		t.Error("Expected IsCode to reject a different code")
	}

	wrapped := models.WrapError(models.ErrCodeStorage, "db down", err)
	if !models.IsCode(wrapped, models.ErrCodeStorage) {
		t.Error("Expected IsCode to match a wrapped error")
	}
}
