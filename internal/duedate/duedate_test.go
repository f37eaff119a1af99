package duedate_test

import (
	"testing"
	"time"

	"taskboard/backend/internal/duedate"
	"taskboard/backend/internal/models"
)

var ref = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want duedate.Bucket
	}{
		{"five days past", ref.AddDate(0, 0, -5), duedate.BucketOverdue},
		{"yesterday", ref.AddDate(0, 0, -1), duedate.BucketOverdue},
		{"same day earlier hour", time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC), duedate.BucketDueToday},
		{"same day later hour", time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), duedate.BucketDueToday},
		{"tomorrow", ref.AddDate(0, 0, 1), duedate.BucketDueSoon},
		{"three days out", ref.AddDate(0, 0, 3), duedate.BucketDueSoon},
		{"four days out", ref.AddDate(0, 0, 4), duedate.BucketNone},
		{"next month", ref.AddDate(0, 1, 0), duedate.BucketNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := duedate.Classify(tt.due, ref); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.due, got, tt.want)
			}
		})
	}
}

func TestClassify_Pure(t *testing.T) {
	due := ref.AddDate(0, 0, 2)
	first := duedate.Classify(due, ref)
	second := duedate.Classify(due, ref)
	if first != second {
		t.Errorf("Classify is not deterministic: %v vs %v", first, second)
	}
}

func TestClassify_MidnightBoundary(t *testing.T) {
	// Sub-day drift must not flip the bucket: a due date one minute after
	// the reference midnight is still "due today" from anywhere in that day.
	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	due := midnight.Add(time.Minute)

	for _, at := range []time.Time{midnight, midnight.Add(6 * time.Hour), midnight.Add(23*time.Hour + 59*time.Minute)} {
		if got := duedate.Classify(due, at); got != duedate.BucketDueToday {
			t.Errorf("Classify at %v = %v, want due_today", at, got)
		}
	}
}

func TestClassifyTask_CompletedNeverOverdue(t *testing.T) {
	task := &models.Task{
		Status:  models.StatusCompleted,
		DueDate: ref.AddDate(0, 0, -5),
	}
	if got := duedate.ClassifyTask(task, ref); got != duedate.BucketNone {
		t.Errorf("ClassifyTask(completed, past due) = %v, want none", got)
	}

	task.Status = models.StatusPending
	if got := duedate.ClassifyTask(task, ref); got != duedate.BucketOverdue {
		t.Errorf("ClassifyTask(pending, past due) = %v, want overdue", got)
	}
}

func TestClassifyTask_DueSoonScenario(t *testing.T) {
	task := &models.Task{
		Title:       "Ship report",
		Description: "Finish Q1 report",
		Status:      models.StatusPending,
		DueDate:     ref.AddDate(0, 0, 2),
	}
	if got := duedate.ClassifyTask(task, ref); got != duedate.BucketDueSoon {
		t.Errorf("ClassifyTask(due in two days) = %v, want due_soon", got)
	}

	// Completing the task and then dragging its due date into the past
	// must not resurface an overdue badge.
	task.Status = models.StatusCompleted
	task.DueDate = ref.AddDate(0, 0, -5)
	if got := duedate.ClassifyTask(task, ref); got != duedate.BucketNone {
		t.Errorf("ClassifyTask(completed, edited into past) = %v, want none", got)
	}
	if task.IsOverdue() {
		t.Error("IsOverdue must also suppress overdue for completed tasks")
	}
}
