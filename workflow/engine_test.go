package workflow

import (
	"testing"

	"github.com/Itish41/ReguGuard/models"
	"github.com/stretchr/testify/assert"
)

func stepsWith(statuses ...models.StepStatus) []models.ActionStep {
	out := make([]models.ActionStep, len(statuses))
	for i, s := range statuses {
		out[i] = models.ActionStep{Status: s}
	}
	return out
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name     string
		statuses []models.StepStatus
		want     models.Column
	}{
		{"single todo", []models.StepStatus{models.StatusTodo}, models.ColumnInProgress},
		{"all done", []models.StepStatus{models.StatusDone, models.StatusDone}, models.ColumnImplemented},
		{"all later", []models.StepStatus{models.StatusLater, models.StatusLater, models.StatusLater}, models.ColumnCompletedLater},
		{"all cancelled", []models.StepStatus{models.StatusCancelled}, models.ColumnImplemented},
		{"done and later", []models.StepStatus{models.StatusDone, models.StatusLater}, models.ColumnImplemented},
		{"cancelled and later", []models.StepStatus{models.StatusCancelled, models.StatusLater}, models.ColumnImplemented},
		{"done with a todo", []models.StepStatus{models.StatusDone, models.StatusTodo}, models.ColumnInProgress},
		{"later with a todo", []models.StepStatus{models.StatusTodo, models.StatusLater}, models.ColumnInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Place(stepsWith(tt.statuses...))
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlace_EmptyIsNotPlaced(t *testing.T) {
	_, ok := Place(nil)
	assert.False(t, ok)
}

func TestPlace_IgnoresOrder(t *testing.T) {
	a, _ := Place(stepsWith(models.StatusTodo, models.StatusDone, models.StatusLater))
	b, _ := Place(stepsWith(models.StatusLater, models.StatusDone, models.StatusTodo))
	assert.Equal(t, a, b)
}
