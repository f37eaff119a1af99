// Package duedate computes urgency buckets from due dates. Urgency is a
// calendar-day concept: both dates are normalized to midnight before
// differencing so that callers in different parts of the same day agree.
package duedate

import (
	"time"

	"taskboard/backend/internal/models"
)

type Bucket string

const (
	BucketOverdue  Bucket = "overdue"
	BucketDueToday Bucket = "due_today"
	BucketDueSoon  Bucket = "due_soon"
	BucketNone     Bucket = "none"
)

// Classify returns the urgency bucket for due relative to ref.
func Classify(due, ref time.Time) Bucket {
	diffDays := daysBetween(ref, due)
	switch {
	case diffDays < 0:
		return BucketOverdue
	case diffDays == 0:
		return BucketDueToday
	case diffDays <= 3:
		return BucketDueSoon
	}
	return BucketNone
}

// ClassifyTask is Classify with the completed-task rule applied: a
// completed task is never shown as overdue, matching Task.IsOverdue.
func ClassifyTask(task *models.Task, ref time.Time) Bucket {
	bucket := Classify(task.DueDate, ref)
	if bucket == BucketOverdue && task.Status == models.StatusCompleted {
		return BucketNone
	}
	return bucket
}

func daysBetween(from, to time.Time) int {
	diff := models.StartOfDay(to).Sub(models.StartOfDay(from))
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}
