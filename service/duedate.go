package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var ErrInvalidDueDate = errors.New("invalid due date")

var dueDateParser = newDueDateParser()

func newDueDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseDueDate reads a YYYY-MM-DD day, an RFC 3339 timestamp or a phrase such
// as "next friday" relative to now. Blank input means no due date.
func ParseDueDate(input string, now time.Time) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if d, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
		return &d, nil
	}
	if d, err := time.Parse(time.RFC3339, input); err == nil {
		return &d, nil
	}

	r, err := dueDateParser.Parse(input, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDueDate, input)
	}
	d := r.Time
	return &d, nil
}
