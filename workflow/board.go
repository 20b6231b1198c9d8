package workflow

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Itish41/ReguGuard/models"
)

var (
	ErrRuleNotFound    = errors.New("rule not found")
	ErrStepNotFound    = errors.New("step not found")
	ErrEmptyStepText   = errors.New("step text is empty")
	ErrDueDateInPast   = errors.New("due date must be today or later")
	ErrInvalidStatus   = errors.New("invalid step status")
	ErrInvalidPriority = errors.New("invalid step priority")
	ErrInvalidColumn   = errors.New("not a workflow column")
	ErrIndexOutOfRange = errors.New("index out of range")
)

const dayLayout = "2006-01-02"

// Board is the single owner of the session's rules, steps and column
// membership. Every method takes the lock for its whole duration, so each call
// is one atomic event and placement always reflects the mutation that caused it.
// A failed call leaves the board unchanged.
type Board struct {
	mu sync.Mutex

	order   []string
	rules   map[string]models.Rule
	columns map[models.Column][]string
	steps   map[string][]models.ActionStep

	now func() time.Time
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	b := &Board{now: time.Now}
	b.reset()
	return b
}

func (b *Board) reset() {
	b.order = nil
	b.rules = make(map[string]models.Rule)
	b.steps = make(map[string][]models.ActionStep)
	b.columns = make(map[models.Column][]string, len(models.AllColumns))
	for _, c := range models.AllColumns {
		b.columns[c] = []string{}
	}
}

// Load replaces the whole rule set. Every rule starts in the analyzed pool and
// all steps and workflow placement are discarded. An empty slice is ignored so
// a failed upload never wipes the current session. Later duplicates of a
// control ID are dropped. It returns the number of rules now on the board.
func (b *Board) Load(rules []models.Rule) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(rules) == 0 {
		log.Println("[Board.Load] No rules supplied; keeping current state")
		return len(b.order)
	}

	b.reset()
	for _, r := range rules {
		if _, dup := b.rules[r.ControlID]; dup {
			log.Printf("[Board.Load] Duplicate control_id %s skipped", r.ControlID)
			continue
		}
		b.rules[r.ControlID] = r
		b.order = append(b.order, r.ControlID)
		b.columns[models.ColumnAnalyzed] = append(b.columns[models.ColumnAnalyzed], r.ControlID)
	}
	log.Printf("[Board.Load] Loaded %d rules", len(b.order))
	return len(b.order)
}

// Rules returns every rule in upload order.
func (b *Board) Rules() []models.Rule {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Rule, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.rules[id])
	}
	return out
}

// Rule looks up a rule by control ID.
func (b *Board) Rule(ruleID string) (models.Rule, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.rules[ruleID]
	return r, ok
}

// ColumnOf returns the workflow column of a rule, or analyzed for a rule that
// has never had a step.
func (b *Board) ColumnOf(ruleID string) (models.Column, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.rules[ruleID]; !ok {
		return "", false
	}
	return b.columnOf(ruleID), true
}

func (b *Board) columnOf(ruleID string) models.Column {
	for _, c := range models.WorkflowColumns {
		if indexOf(b.columns[c], ruleID) >= 0 {
			return c
		}
	}
	return models.ColumnAnalyzed
}

// Column returns the rules of a column in board order.
func (b *Board) Column(c models.Column) []models.Rule {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rulesOf(b.columns[c])
}

// ColumnIDs returns the control IDs of every column in board order.
func (b *Board) ColumnIDs() map[models.Column][]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[models.Column][]string, len(b.columns))
	for c, ids := range b.columns {
		out[c] = append([]string{}, ids...)
	}
	return out
}

// Steps returns a copy of the ordered steps of a rule.
func (b *Board) Steps(ruleID string) []models.ActionStep {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copySteps(b.steps[ruleID])
}

// AddStep appends a todo step to a rule and moves the rule to the column its
// steps now call for, which is always in-progress since the new step is todo.
func (b *Board) AddStep(ruleID string, in models.StepInput) (models.ActionStep, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return models.ActionStep{}, ErrEmptyStepText
	}
	if _, ok := b.rules[ruleID]; !ok {
		return models.ActionStep{}, ErrRuleNotFound
	}
	priority, ok := models.ParsePriority(in.Priority)
	if !ok {
		return models.ActionStep{}, fmt.Errorf("%w: %q", ErrInvalidPriority, in.Priority)
	}

	now := b.now()
	var due *time.Time
	if in.DueDate != nil {
		day := in.DueDate.Format(dayLayout)
		if day < now.In(in.DueDate.Location()).Format(dayLayout) {
			return models.ActionStep{}, ErrDueDateInPast
		}
		d := time.Date(in.DueDate.Year(), in.DueDate.Month(), in.DueDate.Day(), 0, 0, 0, 0, time.UTC)
		due = &d
	}

	existing := b.steps[ruleID]
	step := models.ActionStep{
		ID:          fmt.Sprintf("%s-%d", ruleID, len(existing)+1),
		Text:        text,
		Status:      models.StatusTodo,
		Priority:    priority,
		DueDate:     due,
		Description: strings.TrimSpace(in.Description),
		Assignee:    strings.TrimSpace(in.Assignee),
		Comment:     strings.TrimSpace(in.Comment),
		CreatedAt:   now,
	}
	b.steps[ruleID] = append(existing, step)
	log.Printf("[Board.AddStep] Added step %s to rule %s", step.ID, ruleID)

	b.place(ruleID)
	return step, nil
}

// UpdateStatus sets the status of one step and re-places its rule.
func (b *Board) UpdateStatus(ruleID, stepID string, status models.StepStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i, err := b.findStep(ruleID, stepID)
	if err != nil {
		return err
	}
	b.steps[ruleID][i].Status = status
	log.Printf("[Board.UpdateStatus] Step %s of rule %s is now %s", stepID, ruleID, status)

	b.place(ruleID)
	return nil
}

// UpdateComment replaces the comment of one step. Placement is unaffected.
func (b *Board) UpdateComment(ruleID, stepID, comment string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, err := b.findStep(ruleID, stepID)
	if err != nil {
		return err
	}
	b.steps[ruleID][i].Comment = comment
	return nil
}

// Reorder moves the step at src to dst within the rule's sequence. Index 0 is
// the highest priority. Placement is unaffected.
func (b *Board) Reorder(ruleID string, src, dst int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.rules[ruleID]; !ok {
		return ErrRuleNotFound
	}
	steps := b.steps[ruleID]
	if err := checkIndices(len(steps), src, dst); err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	b.steps[ruleID] = move(steps, src, dst)
	return nil
}

// ReorderColumn moves a rule within a workflow column. The manual order only
// lasts until the rule's steps relocate it, which always appends it to the end
// of its new column.
func (b *Board) ReorderColumn(c models.Column, src, dst int) error {
	if !c.IsWorkflow() {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, c)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ids := b.columns[c]
	if err := checkIndices(len(ids), src, dst); err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	b.columns[c] = move(ids, src, dst)
	return nil
}

// Snapshot copies the board for report generation.
func (b *Board) Snapshot() models.BoardSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := models.BoardSnapshot{
		Columns: make(map[models.Column][]models.Rule, len(b.columns)),
		Steps:   make(map[string][]models.ActionStep, len(b.steps)),
	}
	for _, c := range models.AllColumns {
		snap.Columns[c] = b.rulesOf(b.columns[c])
	}
	for id, steps := range b.steps {
		snap.Steps[id] = copySteps(steps)
	}
	return snap
}

// place re-derives the rule's workflow column from its steps and moves it
// there. Callers hold the lock.
func (b *Board) place(ruleID string) {
	target, ok := Place(b.steps[ruleID])
	if !ok {
		return
	}
	for _, c := range models.WorkflowColumns {
		if i := indexOf(b.columns[c], ruleID); i >= 0 {
			b.columns[c] = append(b.columns[c][:i:i], b.columns[c][i+1:]...)
		}
	}
	if indexOf(b.columns[target], ruleID) < 0 {
		b.columns[target] = append(b.columns[target], ruleID)
	}
	log.Printf("[Board.place] Rule %s placed in %s", ruleID, target)
}

func (b *Board) findStep(ruleID, stepID string) (int, error) {
	if _, ok := b.rules[ruleID]; !ok {
		return -1, ErrRuleNotFound
	}
	for i, s := range b.steps[ruleID] {
		if s.ID == stepID {
			return i, nil
		}
	}
	return -1, ErrStepNotFound
}

func (b *Board) rulesOf(ids []string) []models.Rule {
	out := make([]models.Rule, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.rules[id])
	}
	return out
}

func checkIndices(n, src, dst int) error {
	if src < 0 || src >= n || dst < 0 || dst >= n {
		return fmt.Errorf("%w: source %d, destination %d, length %d", ErrIndexOutOfRange, src, dst, n)
	}
	return nil
}

// move removes the element at src and reinserts it at dst.
func move[T any](s []T, src, dst int) []T {
	out := make([]T, 0, len(s))
	out = append(out, s[:src]...)
	out = append(out, s[src+1:]...)
	moved := s[src]
	out = append(out[:dst], append([]T{moved}, out[dst:]...)...)
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func copySteps(steps []models.ActionStep) []models.ActionStep {
	out := make([]models.ActionStep, len(steps))
	copy(out, steps)
	return out
}
