package models

import "time"

// Document records an upload that produced a rule set.
type Document struct {
	// ID is a unique identifier for the upload, stored as a UUID in the database.
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// Filename is the name the client uploaded the file under.
	Filename string `gorm:"not null" json:"filename"`

	// FileType is the lowercased extension without the dot (e.g. "pdf", "txt").
	FileType string `json:"file_type"`

	// OriginalURL points at the stored original in object storage, if any.
	OriginalURL string `json:"original_url"`

	// RuleCount is the number of rules the classifier produced.
	RuleCount int `json:"rule_count"`

	// ProcessingMs is the wall time spent extracting and classifying.
	ProcessingMs int64 `json:"processing_ms"`

	CreatedAt time.Time `json:"created_at"`
}
