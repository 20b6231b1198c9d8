package models

// Column is a bucket on the workflow board.
type Column string

const (
	// ColumnAnalyzed holds every rule of the current upload. Workflow
	// placement never touches it.
	ColumnAnalyzed       Column = "analyzed"
	ColumnInProgress     Column = "in-progress"
	ColumnImplemented    Column = "implemented"
	ColumnCompletedLater Column = "completed-later"
)

// WorkflowColumns are the columns a rule with steps can occupy, in board order.
var WorkflowColumns = []Column{ColumnInProgress, ColumnImplemented, ColumnCompletedLater}

// AllColumns lists the analyzed pool followed by the workflow columns.
var AllColumns = []Column{ColumnAnalyzed, ColumnInProgress, ColumnImplemented, ColumnCompletedLater}

// IsWorkflow reports whether c is one of the three workflow columns.
func (c Column) IsWorkflow() bool {
	for _, wc := range WorkflowColumns {
		if c == wc {
			return true
		}
	}
	return false
}

// ParseColumn returns the column named s and whether it exists.
func ParseColumn(s string) (Column, bool) {
	for _, c := range AllColumns {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
