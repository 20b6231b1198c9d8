package obligation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// ActionLimit bounds every entry of ActionList, ellipsis included.
	ActionLimit = 80

	// Shorten only backs up to a word boundary when one exists past this rune.
	backtrackFloor = 60

	summaryWords = 6
	ellipsis     = "…"
)

var (
	leadingPunct     = regexp.MustCompile(`^[,.;:-]\s*`)
	actionLabel      = regexp.MustCompile(`^[A-Z]\)\s*`)
	trailingPunct    = regexp.MustCompile(`[,;:.]+$`)
	actorModalPrefix = regexp.MustCompile(`(?i)^(the\s+)?(organisation|organization|commission|authority|applicant|individual|person|controller|processor)\s+(must|can|may)\s+`)
)

// Rendering bundles every rendered form of one sentence.
type Rendering struct {
	Statement       string   `json:"statement" yaml:"statement"`
	CoreObligations []string `json:"core_obligations" yaml:"core_obligations"`
	Actions         []string `json:"actions" yaml:"actions"`
	Summary         string   `json:"summary" yaml:"summary"`
	Actor           string   `json:"actor,omitempty" yaml:"actor,omitempty"`
	Polarity        Polarity `json:"polarity,omitempty" yaml:"polarity,omitempty"`
}

// Render computes all four renderings of text.
func Render(text string) Rendering {
	r := Rendering{
		Statement:       ActionStatement(text),
		CoreObligations: CoreObligations(text),
		Actions:         ActionList(text),
		Summary:         Summary(text),
	}
	if clause := ParseModalClause(text); clause != nil {
		r.Actor = clause.Actor
		r.Polarity = clause.Polarity
	}
	return r
}

// ActionStatement renders text as "{Actor} {polarity} {obligation}." when it can
// find the structure, falling back to the cleaned sentence.
func ActionStatement(text string) string {
	normalized := Normalize(text)
	split := SplitListItems(normalized)
	clause := ParseModalClause(normalized)

	switch {
	case split != nil && clause != nil:
		return fmt.Sprintf("%s %s %s.", clause.Actor, clause.Polarity, strings.Join(labelledActions(split), "; "))
	case split != nil:
		return strings.Join(labelledActions(split), "; ")
	case clause != nil:
		obligation := leadingPunct.ReplaceAllString(StripLeadingMarker(clause.After), "")
		sentence := Normalize(fmt.Sprintf("%s %s %s", clause.Actor, clause.Polarity, obligation))
		return strings.TrimRight(Capitalize(sentence), ".") + "."
	default:
		return ensurePeriod(Capitalize(normalized))
	}
}

// CoreObligations lists the atomic obligations of text: one "(label) text" per
// sub-clause, else the semicolon separated parts. Never empty.
func CoreObligations(text string) []string {
	normalized := Normalize(text)
	if split := SplitListItems(normalized); split != nil {
		out := make([]string, 0, len(split.Items))
		for _, item := range split.Items {
			out = append(out, strings.TrimSpace(fmt.Sprintf("(%s) %s", item.Label, item.Text)))
		}
		return out
	}

	var parts []string
	for _, p := range strings.Split(normalized, ";") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return []string{normalized}
	}
	return parts
}

// ActionList renders text as short action lines, one per sub-clause when the
// sentence has them.
func ActionList(text string) []string {
	normalized := Normalize(text)
	if split := SplitListItems(normalized); split != nil {
		out := make([]string, 0, len(split.Items))
		for _, item := range split.Items {
			action := Capitalize(StripLeadingMarker(item.Text))
			prefix := strings.ToUpper(item.Label) + ") "
			out = append(out, prefix+Shorten(action, ActionLimit-len(prefix)))
		}
		return out
	}
	return []string{Shorten(ActionStatement(normalized), ActionLimit)}
}

// Summary returns a label of at most six words for text, or "Rule".
func Summary(text string) string {
	normalized := Normalize(text)
	if actions := ActionList(normalized); len(actions) > 0 {
		if label := summaryLabel(actionLabel.ReplaceAllString(actions[0], "")); label != "" {
			return label
		}
	}

	key := StripLeadingMarker(normalized)
	if clause := ParseModalClause(normalized); clause != nil {
		if after := StripLeadingMarker(clause.After); after != "" {
			key = after
		}
	}
	if label := summaryLabel(key); label != "" {
		return label
	}
	return "Rule"
}

// Shorten cuts s to at most limit runes, ellipsis included, preferring to end
// on a word boundary.
func Shorten(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit < 1 {
		return ellipsis
	}
	cut := runes[:limit-1]
	for i := len(cut) - 1; i > backtrackFloor; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return string(cut) + ellipsis
}

func labelledActions(split *ListSplit) []string {
	out := make([]string, 0, len(split.Items))
	for _, item := range split.Items {
		action := Capitalize(StripLeadingMarker(item.Text))
		out = append(out, fmt.Sprintf("%s) %s", strings.ToUpper(item.Label), action))
	}
	return out
}

func summaryLabel(s string) string {
	s = strings.TrimSpace(actorModalPrefix.ReplaceAllString(strings.TrimSpace(s), ""))
	words := strings.Fields(s)
	if len(words) > summaryWords {
		words = words[:summaryWords]
	}
	return trailingPunct.ReplaceAllString(strings.Join(words, " "), "")
}
