package models

import (
	"fmt"
	"time"
)

// Task is a single to-do item. Timestamps are epoch milliseconds, matching
// the on-disk representation. ID is zero until the store assigns one.
type Task struct {
	ID          int64
	Description string
	Finished    bool
	CreatedAt   int64
	ModifiedAt  int64
}

// NewTask builds an unsaved pending task. CreatedAt and ModifiedAt start
// equal; the store assigns ID on insert.
func NewTask(description string) *Task {
	now := time.Now().UnixMilli()
	return &Task{
		Description: description,
		Finished:    false,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
}

func (t *Task) SetID(id int64) {
	t.ID = id
	t.touch()
}

func (t *Task) SetDescription(description string) {
	t.Description = description
	t.touch()
}

func (t *Task) SetFinished(finished bool) {
	t.Finished = finished
	t.touch()
}

func (t *Task) touch() {
	t.ModifiedAt = time.Now().UnixMilli()
}

// HasBeenModified reports whether the task changed after creation.
func (t *Task) HasBeenModified() bool {
	return t.ModifiedAt > t.CreatedAt
}

func (t *Task) CreationTime() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

func (t *Task) ModificationTime() time.Time {
	return time.UnixMilli(t.ModifiedAt)
}

// Equal compares tasks by identity, not content. Distinct unsaved tasks
// (ID zero) are never equal.
func (t *Task) Equal(other *Task) bool {
	if t == other {
		return true
	}
	if other == nil || t.ID == 0 {
		return false
	}
	return t.ID == other.ID
}

func (t *Task) String() string {
	return fmt.Sprintf("Task{id=%d, description=%q, finished=%t, created=%s}",
		t.ID, t.Description, t.Finished, t.CreationTime().Format(time.RFC3339))
}
