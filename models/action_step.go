package models

import (
	"strings"
	"time"
)

// StepStatus is the progress state of an action step.
type StepStatus string

const (
	StatusTodo      StepStatus = "todo"
	StatusDone      StepStatus = "done"
	StatusLater     StepStatus = "later"
	StatusCancelled StepStatus = "cancelled"
)

// Valid reports whether s is one of the four statuses.
func (s StepStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusDone, StatusLater, StatusCancelled:
		return true
	}
	return false
}

// ParseStepStatus accepts the four statuses in any casing.
func ParseStepStatus(s string) (StepStatus, bool) {
	st := StepStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", false
	}
	return st, true
}

// Priority is the user-chosen label of a step. It does not affect ordering.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts low/medium/high in any casing; empty means low.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityLow, true
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// ActionStep is a remediation task attached to a rule.
type ActionStep struct {
	// ID is "<control_id>-<n>" and unique within the owning rule.
	ID string `json:"id"`

	// Text is the step itself; immutable once created.
	Text string `json:"text"`

	Status   StepStatus `json:"status"`
	Priority Priority   `json:"priority"`

	// DueDate is a calendar day, never before the creation day.
	DueDate *time.Time `json:"dueDate,omitempty"`

	Description string `json:"description"`
	Assignee    string `json:"assignee"`

	// Comment is the only free-text field that can change after creation.
	Comment string `json:"comment"`

	CreatedAt time.Time `json:"createdAt"`
}

// StepInput carries the user supplied fields of a new step.
type StepInput struct {
	Text        string
	DueDate     *time.Time
	Description string
	Assignee    string
	Comment     string
	Priority    string
}
