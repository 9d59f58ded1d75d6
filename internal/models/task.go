package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskStatus is the workflow state of a task. It is kept in sync with the
// completion flag: StatusCompleted implies Completed=true and vice versa.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskPriority is the priority level of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task is one row of the remote tasks collection. GroupID nil means a
// personal task; exactly one of personal or group-owned holds.
type Task struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Description string       `json:"description"`
	Completed   bool         `json:"completed"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	GroupID     *string      `json:"group_id,omitempty"`
	Assignees   []string     `json:"assignees,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Normalize applies defaults at the ingestion boundary so internal logic
// never branches on absence: empty priority becomes medium, empty status is
// derived from the completion flag, and when both are set the richer status
// value wins and the flag follows it.
func (t *Task) Normalize() {
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		if t.Completed {
			t.Status = StatusCompleted
		} else {
			t.Status = StatusPending
		}
	}
	t.Completed = t.Status == StatusCompleted
}

// IsGroupTask reports whether the task belongs to a group.
func (t *Task) IsGroupTask() bool {
	return t.GroupID != nil && *t.GroupID != ""
}

// TaskDraft is the user-supplied input for creating a task.
type TaskDraft struct {
	Description string       `json:"description" validate:"required"`
	Priority    TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=pending in-progress completed"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
}

// TaskPatch carries the editable fields of a task. Nil fields are left
// untouched; the whole patch is applied as one remote update.
type TaskPatch struct {
	Description *string       `json:"description,omitempty"`
	Completed   *bool         `json:"completed,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      *TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=pending in-progress completed"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// Apply copies the patched fields onto a task and re-normalizes it.
func (p TaskPatch) Apply(t *Task) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	t.Normalize()
}

var validate = validator.New()

// ValidateStruct runs the validator tags of any model struct.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
