package models

import "strings"

// Severity is the externally assigned importance of a rule.
type Severity string

const (
	SeverityLow     Severity = "Low"
	SeverityMedium  Severity = "Medium"
	SeverityHigh    Severity = "High"
	SeverityUnknown Severity = "Unknown"
)

// ParseSeverity maps any casing of low/medium/high onto a Severity.
// Anything else is Unknown.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	default:
		return SeverityUnknown
	}
}

// Rule is a single regulatory obligation detected in an uploaded document.
// Rules are created in bulk by the classifier and never mutated afterwards.
type Rule struct {
	// ControlID uniquely identifies the rule across the whole rule set.
	ControlID string `json:"control_id" yaml:"control_id"`

	// Text is the raw sentence the rule was extracted from.
	Text string `json:"text" yaml:"text"`

	// ModalVerb is the detection keyword that triggered the rule, if any.
	ModalVerb string `json:"modal_verb,omitempty" yaml:"modal_verb,omitempty"`

	// Severity, Score, ScoreFlags and ScoreReasons are assigned by the
	// classifier and are opaque to the workflow.
	Severity     Severity   `json:"severity" yaml:"severity"`
	Score        float64    `json:"score" yaml:"score"`
	ScoreFlags   ScoreFlags `json:"score_flags" yaml:"score_flags"`
	ScoreReasons []string   `json:"score_reasons,omitempty" yaml:"score_reasons,omitempty"`

	// Category is the score bucket (LOW, MEDIUM, HIGH, CRITICAL).
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Action is the suggested handling ("Immediate Action" or "Review").
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
}

// ScoreFlags records which keyword boosts contributed to a rule's score.
type ScoreFlags struct {
	Penalty     bool `json:"penalty" yaml:"penalty"`
	Mandatory   bool `json:"mandatory" yaml:"mandatory"`
	Breach      bool `json:"breach" yaml:"breach"`
	Enforcement bool `json:"enforcement" yaml:"enforcement"`
}

// SearchContent is the text indexed for full-text search.
func (r Rule) SearchContent() string {
	return r.ControlID + " " + r.Text
}
