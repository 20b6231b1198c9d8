package services

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/Itish41/ReguGuard/models"
)

// Match types of a DetectionRule.
const (
	MatchContains   = "contains"
	MatchExact      = "exact"
	MatchStartsWith = "startswith"
	MatchRegex      = "regex"
)

// DetectionRule flags a sentence as an obligation when its keyword matches.
type DetectionRule struct {
	ID              string          `json:"id" yaml:"id"`
	Keyword         string          `json:"keyword" yaml:"keyword"`
	Severity        models.Severity `json:"severity" yaml:"severity"`
	MatchType       string          `json:"match_type" yaml:"match_type"`
	Enabled         bool            `json:"enabled" yaml:"enabled"`
	MustAlsoContain []string        `json:"must_also_contain,omitempty" yaml:"must_also_contain,omitempty"`
	MustNotContain  []string        `json:"must_not_contain,omitempty" yaml:"must_not_contain,omitempty"`
}

// DefaultDetectionRules returns a fresh copy of the built-in rule set.
func DefaultDetectionRules() []DetectionRule {
	return []DetectionRule{
		{ID: "shall", Keyword: "shall", Severity: models.SeverityHigh, MatchType: MatchContains, Enabled: true},
		{ID: "must", Keyword: "must", Severity: models.SeverityHigh, MatchType: MatchContains, Enabled: true},
		{ID: "prohibited", Keyword: "prohibited", Severity: models.SeverityHigh, MatchType: MatchContains, Enabled: true},
		{ID: "required", Keyword: "required", Severity: models.SeverityMedium, MatchType: MatchContains, Enabled: true},
		{ID: "should", Keyword: "should", Severity: models.SeverityLow, MatchType: MatchContains, Enabled: true},
		{ID: "may", Keyword: "may", Severity: models.SeverityLow, MatchType: MatchContains, Enabled: true},
	}
}

// Score categories.
const (
	CategoryCritical = "CRITICAL"
	CategoryHigh     = "HIGH"
	CategoryMedium   = "MEDIUM"
	CategoryLow      = "LOW"
)

var (
	majorMarker   = regexp.MustCompile(`\bPART\s+[IVX]+|\bDivision\s+\d+|\b\d+\.\s+[A-Z]|\(\d+\)`)
	numericItem   = regexp.MustCompile(`^\(\d+\)`)
	leadInEnd     = regexp.MustCompile(`[:-]\s*$`)
	leadInModal   = regexp.MustCompile(`(?i)\b(shall|must|may|is required to)\b.*\b(be|include|consist of)\b`)
	letterItem    = regexp.MustCompile(`(?i)\([a-z]\)`)
	leadInChar    = regexp.MustCompile(`[:-]`)
	headerStart   = regexp.MustCompile(`(?i)^(PART|Division|SECTION|Schedule)\b`)
	shortModal    = regexp.MustCompile(`(?i)\b(shall|must|may)\b`)
	definition    = regexp.MustCompile(`(?i)("|“)[^"”]+("|”)\s+means\b`)
	actorModal    = regexp.MustCompile(`(?i)\b(organisation|organization|commission|individual|person|applicant|data intermediary|controller|processor|entity|provider|service|company|team|customer)\b.*\b(shall|must|is required to|may|should|required|prohibited)\b`)
	mandatoryVerb = regexp.MustCompile(`(?i)\b(shall|must)\b`)

	highRiskVerb   = regexp.MustCompile(`(?i)\b(must|shall|required|prohibited|strictly)\b`)
	mediumRiskVerb = regexp.MustCompile(`(?i)\b(should|ensure|monitor|verify)\b`)
	lowRiskVerb    = regexp.MustCompile(`(?i)\b(may|can|optional|recommend)\b`)
)

var (
	penaltyKeywords = []string{"liable", "fine", "imprisonment", "penalty", "prosecution"}
	breachKeywords  = []string{
		"breach", "incident", "unauthorized access", "unauthorised access", "data leak",
		"data loss", "security incident", "ransomware", "compromise",
	}
	enforcementCases = []string{
		"singhealth", "ihis", "grab", "lazada", "pdpc decision", "commission decision", "enforcement case",
	}
	obligationSignals = []string{
		"shall", "must", "required", "prohibited", "should", "may",
		"ensure", "comply", "adhere",
	}
	baseScores = map[models.Severity]float64{
		models.SeverityHigh:    65,
		models.SeverityMedium:  45,
		models.SeverityLow:     25,
		models.SeverityUnknown: 15,
	}
	severityRank = map[models.Severity]int{
		models.SeverityHigh:    0,
		models.SeverityMedium:  1,
		models.SeverityLow:     2,
		models.SeverityUnknown: 3,
	}
)

// RegulatoryClassifier turns extracted document text into scored rules.
type RegulatoryClassifier struct {
	rules []DetectionRule

	// rulesOnly disables the heuristic fallbacks; set when callers supply
	// their own detection rules.
	rulesOnly bool
}

// NewRegulatoryClassifier uses rules when non-nil, the defaults otherwise.
func NewRegulatoryClassifier(rules []DetectionRule) *RegulatoryClassifier {
	if rules == nil {
		return &RegulatoryClassifier{rules: DefaultDetectionRules()}
	}
	return &RegulatoryClassifier{rules: rules, rulesOnly: true}
}

// Classify splits text into sentences and keeps those that read as
// obligations. Control ids are rule-001, rule-002, ... in document order.
func (c *RegulatoryClassifier) Classify(text string) []models.Rule {
	text = strings.NewReplacer("\u00a0", " ", "\u2014", "-", "\u2013", "-").Replace(text)
	text = strings.Join(strings.Fields(text), " ")

	var rules []models.Rule
	for _, chunk := range mergeListChunks(splitMajorChunks(text)) {
		var sentences []string
		if len(letterItem.FindAllString(chunk, -1)) >= 2 && leadInChar.MatchString(chunk) {
			sentences = []string{chunk}
		} else {
			sentences = splitSentences(chunk)
		}

		for _, sentence := range sentences {
			if sentence = strings.TrimSpace(sentence); sentence == "" || isStructural(sentence) {
				continue
			}

			matches := c.match(sentence)
			if c.rulesOnly {
				if len(matches) == 0 {
					continue
				}
			} else if len(matches) == 0 && !actorModal.MatchString(sentence) && !hasObligationSignal(sentence) {
				continue
			}

			severity, modal, matched := c.severity(sentence, matches)
			score, category, flags, reasons := classifyScore(sentence, severity, matched)
			action := "Review"
			if category == CategoryCritical || category == CategoryHigh || severity == models.SeverityHigh {
				action = "Immediate Action"
			}
			rules = append(rules, models.Rule{
				ControlID:    fmt.Sprintf("rule-%03d", len(rules)+1),
				Text:         sentence,
				ModalVerb:    modal,
				Severity:     severity,
				Score:        score,
				ScoreFlags:   flags,
				ScoreReasons: reasons,
				Category:     category,
				Action:       action,
			})
		}
	}
	log.Printf("[RegulatoryClassifier.Classify] Detected %d rules", len(rules))
	return rules
}

// splitMajorChunks cuts text in front of every structural marker.
func splitMajorChunks(text string) []string {
	var chunks []string
	start := 0
	for _, loc := range majorMarker.FindAllStringIndex(text, -1) {
		if loc[0] > start {
			chunks = append(chunks, text[start:loc[0]])
		}
		start = loc[0]
	}
	return append(chunks, text[start:])
}

// mergeListChunks folds numbered sub-clauses back into the lead-in sentence
// that introduces them.
func mergeListChunks(chunks []string) []string {
	var merged []string
	leadIn := -1
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if leadIn >= 0 && numericItem.MatchString(chunk) {
			merged[leadIn] = strings.TrimRight(merged[leadIn], " ") + " " + chunk
			continue
		}
		merged = append(merged, chunk)
		if leadInEnd.MatchString(chunk) || leadInModal.MatchString(chunk) {
			leadIn = len(merged) - 1
		} else {
			leadIn = -1
		}
	}
	return merged
}

// splitSentences splits after '.', '!' or '?' when followed by a space.
func splitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '.', '!', '?':
			if s[i+1] == ' ' {
				out = append(out, s[start:i+1])
				start = i + 2
				i++
			}
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// isStructural reports headings, short titles and definition clauses.
func isStructural(s string) bool {
	if headerStart.MatchString(s) || isAllUpper(s) {
		return true
	}
	if len(strings.Fields(s)) <= 4 && !shortModal.MatchString(s) {
		return true
	}
	return definition.MatchString(s)
}

func isAllUpper(s string) bool {
	upper := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			upper = true
		}
	}
	return upper
}

func hasObligationSignal(s string) bool {
	return containsAny(strings.ToLower(s), obligationSignals)
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// match returns the enabled detection rules that fire on sentence.
func (c *RegulatoryClassifier) match(sentence string) []DetectionRule {
	lower := strings.ToLower(sentence)
	trimmed := strings.TrimSpace(lower)
	var out []DetectionRule
	for _, rule := range c.rules {
		if !rule.Enabled {
			continue
		}
		keyword := strings.ToLower(rule.Keyword)
		var matched bool
		switch strings.ToLower(rule.MatchType) {
		case MatchExact:
			matched = trimmed == keyword
		case MatchStartsWith:
			matched = strings.HasPrefix(trimmed, keyword)
		case MatchRegex:
			re, err := regexp.Compile("(?i)" + rule.Keyword)
			if err != nil {
				log.Printf("[RegulatoryClassifier.match] Skipping rule %s with invalid pattern: %v", rule.ID, err)
				continue
			}
			matched = re.MatchString(sentence)
		default:
			matched = strings.Contains(lower, keyword)
		}
		if !matched || !containsAll(lower, rule.MustAlsoContain) || containsAny(lower, nonEmptyLower(rule.MustNotContain)) {
			continue
		}
		out = append(out, rule)
	}
	return out
}

func containsAll(lower string, terms []string) bool {
	for _, t := range nonEmptyLower(terms) {
		if !strings.Contains(lower, t) {
			return false
		}
	}
	return true
}

func nonEmptyLower(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			out = append(out, strings.ToLower(t))
		}
	}
	return out
}

// severity picks the most severe matching rule, falling back to modal verb
// heuristics unless the classifier only trusts its rules.
func (c *RegulatoryClassifier) severity(sentence string, matches []DetectionRule) (models.Severity, string, []DetectionRule) {
	if len(matches) > 0 {
		sorted := append([]DetectionRule(nil), matches...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return rank(sorted[i].Severity) < rank(sorted[j].Severity)
		})
		top := sorted[0]
		return models.ParseSeverity(string(top.Severity)), strings.ToLower(top.Keyword), sorted
	}
	if c.rulesOnly {
		return models.SeverityUnknown, "", nil
	}
	for _, h := range []struct {
		re       *regexp.Regexp
		severity models.Severity
	}{
		{highRiskVerb, models.SeverityHigh},
		{mediumRiskVerb, models.SeverityMedium},
		{lowRiskVerb, models.SeverityLow},
	} {
		if m := h.re.FindString(sentence); m != "" {
			return h.severity, strings.ToLower(m), nil
		}
	}
	return models.SeverityUnknown, "", nil
}

func rank(s models.Severity) int {
	if r, ok := severityRank[models.ParseSeverity(string(s))]; ok {
		return r
	}
	return len(severityRank)
}

// classifyScore adds keyword boosts on top of the severity base score.
func classifyScore(sentence string, severity models.Severity, matched []DetectionRule) (float64, string, models.ScoreFlags, []string) {
	lower := strings.ToLower(sentence)
	score, ok := baseScores[severity]
	if !ok {
		score = baseScores[models.SeverityUnknown]
	}
	reasons := []string{fmt.Sprintf("+base severity (%s)", severity)}
	flags := models.ScoreFlags{
		Penalty:     containsAny(lower, penaltyKeywords),
		Mandatory:   mandatoryVerb.MatchString(lower),
		Breach:      containsAny(lower, breachKeywords),
		Enforcement: containsAny(lower, enforcementCases),
	}

	if len(matched) > 0 {
		desc := make([]string, 0, len(matched))
		for _, r := range matched {
			desc = append(desc, fmt.Sprintf("%s [%s]", r.Keyword, r.Severity))
		}
		reasons = append(reasons, "Matched rules: "+strings.Join(desc, ", "))
	}
	if flags.Penalty {
		score += 20
		reasons = append(reasons, "+20 penalty keyword")
	}
	if flags.Mandatory {
		score += 15
		reasons = append(reasons, "+15 mandatory (shall/must)")
	}
	if flags.Breach {
		score += 10
		reasons = append(reasons, "+10 data/security breach")
	}
	if flags.Enforcement {
		score += 10
		reasons = append(reasons, "+10 PDPC enforcement mention")
	}
	if score > 100 {
		score = 100
	}
	return score, scoreCategory(score), flags, reasons
}

func scoreCategory(score float64) string {
	switch {
	case score >= 80:
		return CategoryCritical
	case score >= 60:
		return CategoryHigh
	case score >= 40:
		return CategoryMedium
	default:
		return CategoryLow
	}
}
