package services

import (
	"context"
	"fmt"
	"time"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/stores"

	"github.com/gofrs/uuid"
)

const (
	taskCacheTTL     = 30 * time.Minute
	listCacheTTL     = 10 * time.Minute
	activityCacheTTL = 5 * time.Minute
)

// CachedTaskService is a read-through decorator: reads are served from
// redis when possible, every mutation invalidates the owner's cached
// views. Cache failures degrade to the underlying service and are never
// surfaced to the caller.
type CachedTaskService struct {
	inner TaskService
	cache *cache.RedisCache
}

func NewCachedTaskService(inner TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: cacheInstance}
}

func (s *CachedTaskService) CreateTask(ctx context.Context, owner uuid.UUID, input stores.TaskInput) (*MutationResult, error) {
	result, err := s.inner.CreateTask(ctx, owner, input)
	if err != nil {
		return nil, err
	}
	s.invalidateOwner(ctx, owner)
	return result, nil
}

func (s *CachedTaskService) GetTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	key := taskKey(owner, id)

	var cached models.Task
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	task, err := s.inner.GetTask(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) ListTasks(ctx context.Context, owner uuid.UUID, status string) ([]models.Task, error) {
	key := listKey(owner, status)

	var cached []models.Task
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.inner.ListTasks(ctx, owner, status)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, tasks, listCacheTTL)
	return tasks, nil
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, owner, id uuid.UUID, patch stores.TaskPatch) (*MutationResult, error) {
	result, err := s.inner.UpdateTask(ctx, owner, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidateOwner(ctx, owner)
	return result, nil
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, owner, id uuid.UUID) (bool, error) {
	degraded, err := s.inner.DeleteTask(ctx, owner, id)
	if err != nil {
		return degraded, err
	}
	s.invalidateOwner(ctx, owner)
	return degraded, nil
}

// OverdueTasks is intentionally uncached: the result depends on the
// current day, and a stale overdue list defeats its purpose.
func (s *CachedTaskService) OverdueTasks(ctx context.Context, owner uuid.UUID) ([]models.Task, error) {
	return s.inner.OverdueTasks(ctx, owner)
}

func (s *CachedTaskService) RecentActivity(ctx context.Context, owner uuid.UUID, limit int) ([]models.Activity, error) {
	key := activityKey(owner, limit)

	var cached []models.Activity
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	activities, err := s.inner.RecentActivity(ctx, owner, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, activities, activityCacheTTL)
	return activities, nil
}

// invalidateOwner drops every cached view for the owner. Mutations also
// append an activity entry, so the activity keys go too.
func (s *CachedTaskService) invalidateOwner(ctx context.Context, owner uuid.UUID) {
	s.cache.DeletePattern(ctx, fmt.Sprintf("task:%s:*", owner))
	s.cache.DeletePattern(ctx, fmt.Sprintf("user_tasks:%s:*", owner))
	s.cache.DeletePattern(ctx, fmt.Sprintf("user_activities:%s:*", owner))
}

func taskKey(owner, id uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", owner, id)
}

func listKey(owner uuid.UUID, status string) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("user_tasks:%s:%s", owner, status)
}

func activityKey(owner uuid.UUID, limit int) string {
	return fmt.Sprintf("user_activities:%s:%d", owner, limit)
}
