// Package workflow owns the rule board: ordered action steps per rule and the
// workflow column each rule occupies, derived from those steps.
package workflow

import "github.com/Itish41/ReguGuard/models"

// aggregate holds the order independent predicates placement is decided on.
type aggregate struct {
	allDone      bool
	allLater     bool
	allCancelled bool
	allSet       bool
}

func summarize(steps []models.ActionStep) aggregate {
	agg := aggregate{allDone: true, allLater: true, allCancelled: true, allSet: true}
	for _, s := range steps {
		agg.allDone = agg.allDone && s.Status == models.StatusDone
		agg.allLater = agg.allLater && s.Status == models.StatusLater
		agg.allCancelled = agg.allCancelled && s.Status == models.StatusCancelled
		agg.allSet = agg.allSet && s.Status != models.StatusTodo
	}
	return agg
}

// Place returns the workflow column for a rule with the given steps. The
// second result is false for an empty list: such rules are never placed.
//
// A mix of later and cancelled steps counts as implemented because every step
// has been dealt with, even though some work is deferred.
func Place(steps []models.ActionStep) (models.Column, bool) {
	if len(steps) == 0 {
		return "", false
	}
	agg := summarize(steps)
	switch {
	case agg.allLater:
		return models.ColumnCompletedLater, true
	case agg.allDone, agg.allCancelled, agg.allSet:
		return models.ColumnImplemented, true
	default:
		return models.ColumnInProgress, true
	}
}
