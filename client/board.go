package client

import (
	"context"
	"errors"
	"sync"
)

// ErrUnknownTask is returned when a move targets a task the board does
// not hold.
var ErrUnknownTask = errors.New("task not on board")

// Board keeps the local view of the owner's tasks. A status move is
// applied to the view before the server confirms it, so a drag gesture
// never blocks on network latency; a failed request restores the
// captured snapshot exactly, all or nothing.
type Board struct {
	client *Client

	mu    sync.Mutex
	tasks []Task
}

func NewBoard(c *Client) *Board {
	return &Board{client: c}
}

// Refresh replaces the local view with the server's authoritative list.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.client.ListTasks(ctx, "")
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.tasks = tasks
	b.mu.Unlock()
	return nil
}

// Tasks returns a copy of the local view.
func (b *Board) Tasks() []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// TasksByStatus filters the local view into one board column.
func (b *Board) TasksByStatus(status string) []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Task
	for _, t := range b.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// MoveTask changes a task's status optimistically. When the target
// status equals the current one no request is issued at all. On any
// server failure the pre-move snapshot is restored and the error is
// returned so the caller can surface a failure notice.
func (b *Board) MoveTask(ctx context.Context, id, newStatus string) error {
	b.mu.Lock()
	idx := -1
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return ErrUnknownTask
	}
	if b.tasks[idx].Status == newStatus {
		b.mu.Unlock()
		return nil
	}

	snapshot := make([]Task, len(b.tasks))
	copy(snapshot, b.tasks)

	b.tasks[idx].Status = newStatus
	b.mu.Unlock()

	_, err := b.client.UpdateTask(ctx, id, TaskPatch{Status: &newStatus})
	if err != nil {
		b.mu.Lock()
		b.tasks = snapshot
		b.mu.Unlock()
		return err
	}

	// The optimistic value was accepted; a re-fetch picks up server-side
	// derived fields such as updated_at. A failed refresh keeps the
	// accepted optimistic state rather than rolling back a confirmed
	// change.
	_ = b.Refresh(ctx)
	return nil
}
