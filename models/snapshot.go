package models

import (
	"time"

	"gorm.io/datatypes"
)

// BoardSnapshot is the handoff format for report generation: rules grouped by
// column plus the steps of every rule that has any.
type BoardSnapshot struct {
	Columns map[Column][]Rule       `json:"columns"`
	Steps   map[string][]ActionStep `json:"steps"`
}

// WorkflowSnapshot is an archived BoardSnapshot.
type WorkflowSnapshot struct {
	// ID is a unique identifier for the snapshot, stored as a UUID in the database.
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// DocumentID references the upload the rules came from, empty if unknown.
	DocumentID *string `gorm:"type:uuid" json:"document_id,omitempty"`

	// Payload is the JSON encoded BoardSnapshot.
	Payload datatypes.JSON `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}
