package services_test

import (
	"context"
	"testing"
	"time"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
	"taskboard/backend/internal/stores"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newCachedFixture(t *testing.T) (services.TaskService, uuid.UUID) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Task{}, &models.Activity{}))

	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { redisCache.Close() })

	inner := services.NewTaskService(stores.NewTaskStore(db), stores.NewActivityStore(db), nil)
	return services.NewCachedTaskService(inner, redisCache), uuid.Must(uuid.NewV4())
}

func TestCachedTaskService_ListInvalidatedByMutation(t *testing.T) {
	service, owner := newCachedFixture(t)
	ctx := context.Background()

	created, err := service.CreateTask(ctx, owner, validInput())
	require.NoError(t, err)

	first, err := service.ListTasks(ctx, owner, "")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Second read is served from cache and must agree.
	second, err := service.ListTasks(ctx, owner, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A status move invalidates the cached list.
	newStatus := models.StatusCompleted
	_, err = service.UpdateTask(ctx, owner, created.Task.ID, stores.TaskPatch{Status: &newStatus})
	require.NoError(t, err)

	third, err := service.ListTasks(ctx, owner, "")
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Equal(t, models.StatusCompleted, third[0].Status)
}

func TestCachedTaskService_DeleteInvalidates(t *testing.T) {
	service, owner := newCachedFixture(t)
	ctx := context.Background()

	created, err := service.CreateTask(ctx, owner, validInput())
	require.NoError(t, err)

	// Warm both the task and list caches.
	_, err = service.GetTask(ctx, owner, created.Task.ID)
	require.NoError(t, err)
	_, err = service.ListTasks(ctx, owner, "")
	require.NoError(t, err)

	_, err = service.DeleteTask(ctx, owner, created.Task.ID)
	require.NoError(t, err)

	_, err = service.GetTask(ctx, owner, created.Task.ID)
	assert.True(t, models.IsCode(err, models.ErrCodeNotFound), "stale cache must not resurrect a deleted task")

	tasks, err := service.ListTasks(ctx, owner, "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCachedTaskService_ActivityFeedInvalidated(t *testing.T) {
	service, owner := newCachedFixture(t)
	ctx := context.Background()

	created, err := service.CreateTask(ctx, owner, validInput())
	require.NoError(t, err)

	feed, err := service.RecentActivity(ctx, owner, stores.DefaultActivityLimit)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	time.Sleep(2 * time.Millisecond)
	newStatus := models.StatusInProgress
	_, err = service.UpdateTask(ctx, owner, created.Task.ID, stores.TaskPatch{Status: &newStatus})
	require.NoError(t, err)

	feed, err = service.RecentActivity(ctx, owner, stores.DefaultActivityLimit)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, models.ActionStatusChanged, feed[0].Action)
}
