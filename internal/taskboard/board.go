// Package taskboard holds the in-memory task list shared between the task
// editor and the review screen. The board is the single owner of the
// collection: consumers mutate it only through the operations below and
// read it only through snapshots, never through a live alias. Nothing is
// persisted; the board dies with its owner.
package taskboard

import (
	"strings"
	"sync"

	"worklane.org/internal/ids"
)

// Board is an ordered, append-only-ordered collection of tasks with
// in-process concurrency safety.
type Board struct {
	mu    sync.RWMutex
	tasks []Task
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{}
}

// Add validates the draft, fills defaults and appends a new Pending task.
// Insertion order is the display order.
func (b *Board) Add(draft Draft) (Task, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return Task{}, ErrNameRequired
	}

	task := Task{
		ID:          ids.New(),
		Name:        draft.Name,
		Assignee:    draft.Assignee,
		Priority:    draft.Priority,
		Type:        draft.Type,
		DueDate:     draft.DueDate,
		Tags:        draft.Tags,
		Description: draft.Description,
		Attachment:  draft.Attachment,
		Status:      StatusPending,
	}
	if task.Priority == "" {
		task.Priority = PriorityLow
	}
	if strings.TrimSpace(task.Type) == "" {
		task.Type = DefaultType
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, task)
	return task, nil
}

// Update applies the patch to the task with the given id. Unknown ids are
// a no-op; the collection order never changes.
func (b *Board) Update(id string, patch Patch) (Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID != id {
			continue
		}
		t := &b.tasks[i]
		if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
			t.Name = *patch.Name
		}
		if patch.Assignee != nil {
			t.Assignee = *patch.Assignee
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.Type != nil {
			t.Type = *patch.Type
		}
		if patch.DueDate != nil {
			t.DueDate = *patch.DueDate
		}
		if patch.Tags != nil {
			t.Tags = *patch.Tags
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Attachment != nil {
			t.Attachment = *patch.Attachment
		}
		return *t, true
	}
	return Task{}, false
}

// Delete removes the task with the given id. Unknown ids are a no-op.
func (b *Board) Delete(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Toggle flips the task between Pending and Completed. It is the only
// allowed status transition and is always reversible.
func (b *Board) Toggle(id string) (Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID != id {
			continue
		}
		if b.tasks[i].Status == StatusPending {
			b.tasks[i].Status = StatusCompleted
		} else {
			b.tasks[i].Status = StatusPending
		}
		return b.tasks[i], true
	}
	return Task{}, false
}

// Tasks returns a snapshot of the collection in insertion order.
func (b *Board) Tasks() []Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// Len reports the number of tasks on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tasks)
}

// Tab selects between the review screen's two status tabs.
type Tab string

const (
	TabActive Tab = "active"
	TabClosed Tab = "closed"
)

// Filter is the review view's projection: workflow type, status tab and a
// case-insensitive assignee search, combined conjunctively.
type Filter struct {
	Type   string
	Tab    Tab
	Search string
}

// Filtered recomputes the review projection from current state. It never
// mutates the board and returns copies.
func (b *Board) Filtered(f Filter) []Task {
	want := StatusPending
	if f.Tab == TabClosed {
		want = StatusCompleted
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Task
	for _, t := range b.tasks {
		if f.Type != "" && f.Type != TypeAll && t.Type != f.Type {
			continue
		}
		if t.Status != want {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Assignee), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}
