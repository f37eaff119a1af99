package handlers

import (
	"errors"
	"net/http"
	"time"

	"taskboard/backend/internal/duedate"
	"taskboard/backend/internal/middleware"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
	"taskboard/backend/internal/stores"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// taskView decorates a task with its display urgency bucket.
type taskView struct {
	models.Task
	DueStatus duedate.Bucket `json:"due_status"`
}

// mutationResponse is the envelope for mutations so the audit-degraded
// signal can ride along with an otherwise successful result.
type mutationResponse struct {
	Task          *models.Task `json:"task"`
	AuditDegraded bool         `json:"audit_degraded"`
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	owner, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	status := c.Query("status")
	tasks, err := h.taskService.ListTasks(c.Request.Context(), owner, status)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, toViews(tasks))
}

func (h *TaskHandler) GetOverdueTasks(c *gin.Context) {
	owner, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	tasks, err := h.taskService.OverdueTasks(c.Request.Context(), owner)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, toViews(tasks))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	owner, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), owner, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskView{Task: *task, DueStatus: duedate.ClassifyTask(task, time.Now())})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	owner, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	var input stores.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all required fields"})
		return
	}

	result, err := h.taskService.CreateTask(c.Request.Context(), owner, input)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mutationResponse{Task: result.Task, AuditDegraded: result.AuditDegraded})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	owner, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	var patch stores.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	result, err := h.taskService.UpdateTask(c.Request.Context(), owner, id, patch)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, mutationResponse{Task: result.Task, AuditDegraded: result.AuditDegraded})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	owner, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	degraded, err := h.taskService.DeleteTask(c.Request.Context(), owner, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully", "audit_degraded": degraded})
}

func (h *TaskHandler) GetActivities(c *gin.Context) {
	owner, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	activities, err := h.taskService.RecentActivity(c.Request.Context(), owner, stores.DefaultActivityLimit)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func toViews(tasks []models.Task) []taskView {
	now := time.Now()
	views := make([]taskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, taskView{
			Task:      tasks[i],
			DueStatus: duedate.ClassifyTask(&tasks[i], now),
		})
	}
	return views
}

// handleTaskError maps domain error codes to HTTP statuses. An ownership
// mismatch answers with a bare "Not authorized" so the response leaks
// nothing about the record it refused.
func handleTaskError(c *gin.Context, err error) {
	var dErr *models.Error
	if !errors.As(err, &dErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to process task request"})
		return
	}

	switch dErr.Code {
	case models.ErrCodeValidation:
		c.JSON(http.StatusBadRequest, gin.H{"message": dErr.Message})
	case models.ErrCodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": dErr.Message})
	case models.ErrCodeForbidden:
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
	case models.ErrCodeUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"message": dErr.Message})
	case models.ErrCodeConflict:
		c.JSON(http.StatusConflict, gin.H{"message": dErr.Message})
	case models.ErrCodeStorage:
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Storage temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to process task request"})
	}
}
