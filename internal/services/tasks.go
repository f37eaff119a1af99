package services

import (
	"context"
	"fmt"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/stores"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// TaskStore is the authoritative task state consumed by the service.
type TaskStore interface {
	Create(ctx context.Context, owner uuid.UUID, input stores.TaskInput) (*models.Task, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, owner uuid.UUID, status string) ([]models.Task, error)
	Update(ctx context.Context, owner, id uuid.UUID, patch stores.TaskPatch) (*models.Task, error)
	SoftDelete(ctx context.Context, owner, id uuid.UUID) error
	FindOverdue(ctx context.Context, owner uuid.UUID) ([]models.Task, error)
}

// ActivityRecorder is the append-only audit log consumed by the service.
type ActivityRecorder interface {
	Record(ctx context.Context, owner uuid.UUID, action, taskTitle, details, oldStatus, newStatus string) (*models.Activity, error)
	Recent(ctx context.Context, owner uuid.UUID, limit int) ([]models.Activity, error)
}

// MutationResult is the outcome of a successful task mutation.
// AuditDegraded is true when the task write succeeded but the paired
// activity write failed: the mutation stands, and the caller must warn
// that the audit trail may be incomplete.
type MutationResult struct {
	Task          *models.Task
	AuditDegraded bool
}

// TaskService pairs every task mutation with exactly one activity entry.
type TaskService interface {
	CreateTask(ctx context.Context, owner uuid.UUID, input stores.TaskInput) (*MutationResult, error)
	GetTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, owner uuid.UUID, status string) ([]models.Task, error)
	UpdateTask(ctx context.Context, owner, id uuid.UUID, patch stores.TaskPatch) (*MutationResult, error)
	DeleteTask(ctx context.Context, owner, id uuid.UUID) (auditDegraded bool, err error)
	OverdueTasks(ctx context.Context, owner uuid.UUID) ([]models.Task, error)
	RecentActivity(ctx context.Context, owner uuid.UUID, limit int) ([]models.Activity, error)
}

// TaskServiceImpl is the sole mutation entry point: the store write runs
// first, then the audit append. The two are not wrapped in a cross-record
// transaction; a crash between them leaves the audit trail behind the
// true state, which is why an audit failure surfaces as AuditDegraded
// instead of being swallowed or rolling back the mutation.
type TaskServiceImpl struct {
	tasks      TaskStore
	activities ActivityRecorder
	logger     *zap.Logger
}

func NewTaskService(tasks TaskStore, activities ActivityRecorder, logger *zap.Logger) *TaskServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskServiceImpl{tasks: tasks, activities: activities, logger: logger}
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, owner uuid.UUID, input stores.TaskInput) (*MutationResult, error) {
	task, err := s.tasks.Create(ctx, owner, input)
	if err != nil {
		return nil, err
	}

	degraded := s.record(ctx, owner, models.ActionTaskCreated, task.Title,
		fmt.Sprintf("Created task: %s", task.Title), "", "")
	return &MutationResult{Task: task, AuditDegraded: degraded}, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	return s.tasks.Get(ctx, owner, id)
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, owner uuid.UUID, status string) ([]models.Task, error) {
	return s.tasks.List(ctx, owner, status)
}

// UpdateTask applies the patch and derives exactly one activity entry:
// a status_changed entry when a new status is supplied and differs from
// the current value, otherwise a task_updated entry. Never both, never
// neither, for a single call.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, owner, id uuid.UUID, patch stores.TaskPatch) (*MutationResult, error) {
	current, err := s.tasks.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	oldStatus := current.Status
	// The activity names the task as it was when the caller acted on it,
	// so a call that renames and re-statuses in one go logs the old title.
	oldTitle := current.Title

	task, err := s.tasks.Update(ctx, owner, id, patch)
	if err != nil {
		return nil, err
	}

	var degraded bool
	if patch.Status != nil && *patch.Status != oldStatus {
		degraded = s.record(ctx, owner, models.ActionStatusChanged, oldTitle,
			fmt.Sprintf("Changed status from %s to %s", oldStatus, *patch.Status),
			oldStatus, *patch.Status)
	} else {
		degraded = s.record(ctx, owner, models.ActionTaskUpdated, oldTitle,
			fmt.Sprintf("Updated task: %s", oldTitle), "", "")
	}
	return &MutationResult{Task: task, AuditDegraded: degraded}, nil
}

// DeleteTask soft-deletes the task. The title is captured from the
// pre-delete load so the audit entry reflects the task as it was.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, owner, id uuid.UUID) (bool, error) {
	current, err := s.tasks.Get(ctx, owner, id)
	if err != nil {
		return false, err
	}
	title := current.Title

	if err := s.tasks.SoftDelete(ctx, owner, id); err != nil {
		return false, err
	}

	degraded := s.record(ctx, owner, models.ActionTaskDeleted, title,
		fmt.Sprintf("Deleted task: %s", title), "", "")
	return degraded, nil
}

func (s *TaskServiceImpl) OverdueTasks(ctx context.Context, owner uuid.UUID) ([]models.Task, error) {
	return s.tasks.FindOverdue(ctx, owner)
}

func (s *TaskServiceImpl) RecentActivity(ctx context.Context, owner uuid.UUID, limit int) ([]models.Activity, error) {
	return s.activities.Recent(ctx, owner, limit)
}

// record appends one audit entry and reports whether the append failed.
// The primary mutation has already succeeded by the time this runs, so
// the failure is logged and signalled, never returned as an error.
func (s *TaskServiceImpl) record(ctx context.Context, owner uuid.UUID, action, taskTitle, details, oldStatus, newStatus string) bool {
	if _, err := s.activities.Record(ctx, owner, action, taskTitle, details, oldStatus, newStatus); err != nil {
		s.logger.Error("activity write failed, audit trail may be incomplete",
			zap.String("action", action),
			zap.String("user_id", owner.String()),
			zap.Error(err))
		return true
	}
	return false
}
