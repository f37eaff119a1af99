// Package client is the API client used by UI layers. Board holds a
// local view of the task list and applies status moves optimistically,
// rolling back to the pre-move snapshot when the server rejects the
// change.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Task is the wire representation served by the tasks API.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"due_date"`
	DueStatus   string    `json:"due_status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Activity is one audit entry from the activity feed.
type Activity struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	TaskTitle string    `json:"taskTitle"`
	Details   string    `json:"details"`
	OldStatus string    `json:"oldStatus,omitempty"`
	NewStatus string    `json:"newStatus,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskInput carries fields for task creation.
type TaskInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status,omitempty"`
	DueDate     time.Time `json:"due_date"`
}

// TaskPatch is a partial update; nil fields are not sent.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// MutationResult is the server's answer to a mutation. AuditDegraded
// means the change was applied but its audit entry was not written; the
// UI should warn that history may be incomplete.
type MutationResult struct {
	Task          Task `json:"task"`
	AuditDegraded bool `json:"audit_degraded"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the tasks API with a bearer credential.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithHTTPClient allows tests to inject a transport.
func NewWithHTTPClient(baseURL, token string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

func (c *Client) ListTasks(ctx context.Context, status string) ([]Task, error) {
	path := "/api/tasks"
	if status != "" {
		path += "?status=" + status
	}
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*MutationResult, error) {
	var result MutationResult
	if err := c.do(ctx, http.MethodPost, "/api/tasks", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*MutationResult, error) {
	var result MutationResult
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, patch, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) RecentActivity(ctx context.Context) ([]Activity, error) {
	var activities []Activity
	if err := c.do(ctx, http.MethodGet, "/api/activities", nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&payload)
		message := payload.Message
		if message == "" {
			message = payload.Error
		}
		if message == "" {
			message = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
