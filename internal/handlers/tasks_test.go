package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/backend/internal/handlers"
	"taskboard/backend/internal/middleware"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
	"taskboard/backend/internal/stores"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskService scripts outcomes for handler tests.
type mockTaskService struct {
	err           error
	auditDegraded bool
	tasks         []models.Task
	activities    []models.Activity
}

func (m *mockTaskService) CreateTask(ctx context.Context, owner uuid.UUID, input stores.TaskInput) (*services.MutationResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      owner,
		Title:       input.Title,
		Description: input.Description,
		Status:      models.StatusPending,
		DueDate:     input.DueDate,
	}
	return &services.MutationResult{Task: &task, AuditDegraded: m.auditDegraded}, nil
}

func (m *mockTaskService) GetTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	task := models.Task{ID: id, UserID: owner, Title: "Ship report", Status: models.StatusPending, DueDate: time.Now().AddDate(0, 0, 2)}
	return &task, nil
}

func (m *mockTaskService) ListTasks(ctx context.Context, owner uuid.UUID, status string) ([]models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tasks, nil
}

func (m *mockTaskService) UpdateTask(ctx context.Context, owner, id uuid.UUID, patch stores.TaskPatch) (*services.MutationResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	task := models.Task{ID: id, UserID: owner, Title: "Ship report", Status: models.StatusInProgress}
	return &services.MutationResult{Task: &task, AuditDegraded: m.auditDegraded}, nil
}

func (m *mockTaskService) DeleteTask(ctx context.Context, owner, id uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.auditDegraded, nil
}

func (m *mockTaskService) OverdueTasks(ctx context.Context, owner uuid.UUID) ([]models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tasks, nil
}

func (m *mockTaskService) RecentActivity(ctx context.Context, owner uuid.UUID, limit int) ([]models.Activity, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.activities) > limit {
		return m.activities[:limit], nil
	}
	return m.activities, nil
}

func setupRouter(mock *mockTaskService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTaskHandler(mock)

	router := gin.New()
	owner := uuid.Must(uuid.NewV4())
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, owner)
	})
	router.GET("/api/tasks", handler.GetTasks)
	router.GET("/api/tasks/overdue", handler.GetOverdueTasks)
	router.GET("/api/tasks/:id", handler.GetTask)
	router.POST("/api/tasks", handler.CreateTask)
	router.PUT("/api/tasks/:id", handler.UpdateTask)
	router.DELETE("/api/tasks/:id", handler.DeleteTask)
	router.GET("/api/activities", handler.GetActivities)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTaskHandler_CreateTask(t *testing.T) {
	router := setupRouter(&mockTaskService{})

	w := doJSON(router, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":       "Ship report",
		"description": "Finish Q1 report",
		"due_date":    time.Now().AddDate(0, 0, 2),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Task          models.Task `json:"task"`
		AuditDegraded bool        `json:"audit_degraded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Ship report", resp.Task.Title)
	assert.False(t, resp.AuditDegraded)
}

func TestTaskHandler_CreateTask_ValidationError(t *testing.T) {
	router := setupRouter(&mockTaskService{
		err: models.NewError(models.ErrCodeValidation, "Title must be at least 3 characters"),
	})

	w := doJSON(router, http.MethodPost, "/api/tasks", map[string]interface{}{"title": "ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Title must be at least 3 characters")
}

func TestTaskHandler_ErrorMapping(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", models.ErrTaskNotFound, http.StatusNotFound},
		{"forbidden", models.ErrNotAuthorized, http.StatusUnauthorized},
		{"storage down", models.NewError(models.ErrCodeStorage, "db down"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&mockTaskService{err: tt.err})
			w := doJSON(router, http.MethodPut, "/api/tasks/"+id.String(), map[string]string{"title": "Updated title"})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestTaskHandler_Forbidden_DoesNotLeak(t *testing.T) {
	router := setupRouter(&mockTaskService{err: models.ErrNotAuthorized})

	id := uuid.Must(uuid.NewV4())
	w := doJSON(router, http.MethodGet, "/api/tasks/"+id.String(), nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]interface{}{"message": "Not authorized"}, resp,
		"the response must reveal nothing beyond the refusal")
}

func TestTaskHandler_UpdateTask_AuditDegraded(t *testing.T) {
	router := setupRouter(&mockTaskService{auditDegraded: true})

	id := uuid.Must(uuid.NewV4())
	w := doJSON(router, http.MethodPut, "/api/tasks/"+id.String(), map[string]string{"status": "in-progress"})
	require.Equal(t, http.StatusOK, w.Code, "audit degradation must not fail the mutation")

	var resp struct {
		AuditDegraded bool `json:"audit_degraded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.AuditDegraded)
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	router := setupRouter(&mockTaskService{})

	id := uuid.Must(uuid.NewV4())
	w := doJSON(router, http.MethodDelete, "/api/tasks/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Task deleted successfully")
}

func TestTaskHandler_GetTasks_DueStatus(t *testing.T) {
	router := setupRouter(&mockTaskService{tasks: []models.Task{
		{ID: uuid.Must(uuid.NewV4()), Title: "Due soon", Status: models.StatusPending, DueDate: time.Now().AddDate(0, 0, 2)},
		{ID: uuid.Must(uuid.NewV4()), Title: "Far out", Status: models.StatusPending, DueDate: time.Now().AddDate(0, 1, 0)},
	}})

	w := doJSON(router, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []struct {
		Title     string `json:"title"`
		DueStatus string `json:"due_status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "due_soon", resp[0].DueStatus)
	assert.Equal(t, "none", resp[1].DueStatus)
}

func TestTaskHandler_GetActivities(t *testing.T) {
	activities := make([]models.Activity, 7)
	for i := range activities {
		activities[i] = models.Activity{
			ID:     uuid.Must(uuid.NewV4()),
			Action: models.ActionTaskCreated,
		}
	}
	router := setupRouter(&mockTaskService{activities: activities})

	w := doJSON(router, http.MethodGet, "/api/activities", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 5, "the feed is capped at five entries")
}

func TestTaskHandler_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTaskHandler(&mockTaskService{})
	router := gin.New()
	router.GET("/api/tasks", handler.GetTasks)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
