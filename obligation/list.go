package obligation

import (
	"regexp"
	"strings"
)

var (
	listMarker = regexp.MustCompile(`(?i)\(([a-z])\)\s*`)

	// Boilerplate that PDF extraction of statute websites appends to the last
	// clause on a page.
	extractionArtifacts = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Singapore Statutes Online.*$`),
		regexp.MustCompile(`(?i)PDF created date.*$`),
	}
)

// ListItem is one lettered sub-clause.
type ListItem struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ListSplit is a sentence broken into its lead-in and lettered sub-clauses.
type ListSplit struct {
	LeadIn string     `json:"lead_in"`
	Items  []ListItem `json:"items"`
}

// SplitListItems finds "(a) ... (b) ..." structure in text. It returns nil when
// the sentence has no lettered markers.
func SplitListItems(text string) *ListSplit {
	text = Normalize(text)
	matches := listMarker.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	split := &ListSplit{
		LeadIn: strings.TrimSpace(text[:matches[0][0]]),
		Items:  make([]ListItem, 0, len(matches)),
	}
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		raw := strings.TrimSpace(text[m[1]:end])
		raw = strings.TrimSuffix(raw, ";")
		for _, pat := range extractionArtifacts {
			raw = strings.TrimSpace(pat.ReplaceAllString(raw, ""))
		}
		// The sentence terminator belongs to the sentence, not the last clause.
		if i == len(matches)-1 {
			raw = strings.TrimSpace(strings.TrimSuffix(raw, "."))
		}
		split.Items = append(split.Items, ListItem{
			Label: text[m[2]:m[3]],
			Text:  raw,
		})
	}
	return split
}
