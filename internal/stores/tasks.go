package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskInput carries the caller-supplied fields for task creation.
type TaskInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"due_date"`
}

// TaskPatch carries a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

// TaskStore owns task records and enforces field and lifecycle
// invariants. Every query is scoped to the owning user and excludes
// soft-deleted rows unless the operation says otherwise.
type TaskStore struct {
	db *gorm.DB
}

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, owner uuid.UUID, input TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)

	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.StatusPending
	}
	if !models.ValidStatus(status) {
		return nil, invalidStatusError(status)
	}

	if input.DueDate.IsZero() {
		return nil, models.NewError(models.ErrCodeValidation, "Please add a due date")
	}
	// Past due dates are rejected at creation only; updates may move an
	// existing task's due date into the past.
	if models.StartOfDay(input.DueDate).Before(models.StartOfDay(time.Now())) {
		return nil, models.NewError(models.ErrCodeValidation, "Due date cannot be in the past")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to generate task ID", err)
	}

	task := models.Task{
		ID:          id,
		UserID:      owner,
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     input.DueDate,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to create task", err)
	}
	return &task, nil
}

func (s *TaskStore) Get(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != owner {
		return nil, models.ErrNotAuthorized
	}
	return task, nil
}

func (s *TaskStore) List(ctx context.Context, owner uuid.UUID, status string) ([]models.Task, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", owner, false)

	if status != "" {
		if !models.ValidStatus(status) {
			return nil, invalidStatusError(status)
		}
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to list tasks", err)
	}
	return tasks, nil
}

func (s *TaskStore) Update(ctx context.Context, owner, id uuid.UUID, patch TaskPatch) (*models.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != owner {
		return nil, models.ErrNotAuthorized
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		task.Title = title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		task.Description = description
	}
	if patch.Status != nil {
		if !models.ValidStatus(*patch.Status) {
			return nil, invalidStatusError(*patch.Status)
		}
		task.Status = *patch.Status
	}
	if patch.DueDate != nil {
		if patch.DueDate.IsZero() {
			return nil, models.NewError(models.ErrCodeValidation, "Please add a due date")
		}
		task.DueDate = *patch.DueDate
	}

	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to update task", err)
	}
	return task, nil
}

// SoftDelete flags the task as deleted without erasing any field. A
// second call for the same id returns NotFound: deleted rows are excluded
// from the existence check, so deletion is a one-shot transition.
func (s *TaskStore) SoftDelete(ctx context.Context, owner, id uuid.UUID) error {
	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if task.UserID != owner {
		return models.ErrNotAuthorized
	}

	task.IsDeleted = true
	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return models.WrapError(models.ErrCodeStorage, "failed to delete task", err)
	}
	return nil
}

func (s *TaskStore) FindOverdue(ctx context.Context, owner uuid.UUID) ([]models.Task, error) {
	today := models.StartOfDay(time.Now())

	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ? AND status <> ? AND due_date < ?",
			owner, false, models.StatusCompleted, today).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to find overdue tasks", err)
	}
	return tasks, nil
}

// load fetches a non-deleted task by id. Soft-deleted rows are treated as
// absent regardless of true ownership, so the caller never gets Forbidden
// for a record that is already gone.
func (s *TaskStore) load(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrTaskNotFound
		}
		return nil, models.WrapError(models.ErrCodeStorage, "failed to load task", err)
	}
	return &task, nil
}

// Length bounds count characters, not bytes, so multi-byte input is
// measured the same as ASCII.
func validateTitle(title string) error {
	if title == "" {
		return models.NewError(models.ErrCodeValidation, "Please add a title")
	}
	length := utf8.RuneCountInString(title)
	if length < models.TitleMinLen {
		return models.NewError(models.ErrCodeValidation,
			fmt.Sprintf("Title must be at least %d characters", models.TitleMinLen))
	}
	if length > models.TitleMaxLen {
		return models.NewError(models.ErrCodeValidation,
			fmt.Sprintf("Title cannot exceed %d characters", models.TitleMaxLen))
	}
	return nil
}

func validateDescription(description string) error {
	if description == "" {
		return models.NewError(models.ErrCodeValidation, "Please add a description")
	}
	length := utf8.RuneCountInString(description)
	if length < models.DescriptionMinLen {
		return models.NewError(models.ErrCodeValidation,
			fmt.Sprintf("Description must be at least %d characters", models.DescriptionMinLen))
	}
	if length > models.DescriptionMaxLen {
		return models.NewError(models.ErrCodeValidation,
			fmt.Sprintf("Description cannot exceed %d characters", models.DescriptionMaxLen))
	}
	return nil
}

func invalidStatusError(status string) error {
	return models.NewError(models.ErrCodeValidation,
		fmt.Sprintf("Invalid status %q. Must be: pending, in-progress, or completed", status))
}
