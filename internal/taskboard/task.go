package taskboard

import "errors"

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Status is the two-state task lifecycle. ToggleStatus flips between the
// states; there is no terminal state.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Workflow type vocabulary as used by the review filters. TypeAll is a
// filter wildcard, never stored on a task.
const (
	TypeAll            = "All"
	TypeAttendance     = "Attendance"
	TypeCustomWorkflow = "Custom Workflow"
	TypeEmployeeInfo   = "EMPINFO"
	TypeLeave          = "LEAVE"
	TypeLetter         = "LETTER"
)

// DefaultType is assigned when a draft leaves the workflow type unset.
const DefaultType = TypeCustomWorkflow

// ErrNameRequired rejects drafts with a blank task name.
var ErrNameRequired = errors.New("taskboard: task name is required")

// Task is one board item. IDs are time-ordered, so insertion order and id
// order coincide.
type Task struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Assignee    string   `json:"assignee,omitempty"`
	Priority    Priority `json:"priority"`
	Type        string   `json:"type"`
	DueDate     string   `json:"due_date,omitempty"`
	Tags        string   `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	Attachment  string   `json:"attachment,omitempty"`
	Status      Status   `json:"status"`
}

// Draft carries the fields a caller may set when creating a task.
type Draft struct {
	Name        string   `json:"name"`
	Assignee    string   `json:"assignee"`
	Priority    Priority `json:"priority"`
	Type        string   `json:"type"`
	DueDate     string   `json:"due_date"`
	Tags        string   `json:"tags"`
	Description string   `json:"description"`
	Attachment  string   `json:"attachment"`
}

// Patch updates the fields that are non-nil, leaving the rest untouched.
type Patch struct {
	Name        *string   `json:"name,omitempty"`
	Assignee    *string   `json:"assignee,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Type        *string   `json:"type,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	Tags        *string   `json:"tags,omitempty"`
	Description *string   `json:"description,omitempty"`
	Attachment  *string   `json:"attachment,omitempty"`
}
