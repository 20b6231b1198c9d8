package obligation

import (
	"regexp"
	"strings"
)

// Polarity is the normalized strength of an obligation.
type Polarity string

const (
	PolarityMust    Polarity = "must"
	PolarityMustNot Polarity = "must not"
	PolarityCan     Polarity = "can"
)

var (
	// Alternation order is the precedence: the negative forms win over their
	// positive prefix at the same position.
	modalPhrase = regexp.MustCompile(`(?i)\b(shall not|must not|shall|must|may|is required to)\b`)

	actorNoun = regexp.MustCompile(`(?i)\b(the\s+)?(commission|organisation|organization|authority|individual|person|applicant|data intermediary|controller|processor)\b`)
	leadingThe = regexp.MustCompile(`(?i)\bthe\s+`)
)

// ModalClause is a sentence split around its governing modal phrase.
type ModalClause struct {
	Actor    string   `json:"actor"`
	Modal    string   `json:"modal"`
	Before   string   `json:"before"`
	After    string   `json:"after"`
	Polarity Polarity `json:"polarity"`
}

// ParseModalClause locates the first modal phrase in text. It returns nil when
// the sentence has none.
func ParseModalClause(text string) *ModalClause {
	normalized := Normalize(text)
	loc := modalPhrase.FindStringIndex(normalized)
	if loc == nil {
		return nil
	}

	modal := strings.ToLower(normalized[loc[0]:loc[1]])
	before := strings.TrimSpace(normalized[:loc[0]])
	after := strings.TrimSpace(normalized[loc[1]:])

	return &ModalClause{
		Actor:    Capitalize(extractActor(before)),
		Modal:    modal,
		Before:   before,
		After:    after,
		Polarity: polarityOf(modal),
	}
}

func extractActor(before string) string {
	if m := actorNoun.FindString(before); m != "" {
		return strings.TrimSpace(leadingThe.ReplaceAllString(m, ""))
	}
	if before == "" {
		return "Actor"
	}
	return before
}

func polarityOf(modal string) Polarity {
	switch modal {
	case "may":
		return PolarityCan
	case "shall not", "must not":
		return PolarityMustNot
	default:
		return PolarityMust
	}
}
