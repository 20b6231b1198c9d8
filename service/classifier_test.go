package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Itish41/ReguGuard/models"
)

const sampleRegulation = `PART II
PROTECTION OF PERSONAL DATA.
13. Consent required. An organisation shall not collect personal data about an individual unless the individual gives consent.
"personal data" means data about an individual.
The organisation may disclose personal data where required by law.
An organisation that contravenes this section shall be liable to a fine.`

func TestRegulatoryClassifier_Classify(t *testing.T) {
	rules := NewRegulatoryClassifier(nil).Classify(sampleRegulation)
	require.Len(t, rules, 3)

	assert.Equal(t, "rule-001", rules[0].ControlID)
	assert.Equal(t, "An organisation shall not collect personal data about an individual unless the individual gives consent.", rules[0].Text)
	assert.Equal(t, models.SeverityHigh, rules[0].Severity)
	assert.Equal(t, "shall", rules[0].ModalVerb)
	assert.Equal(t, 80.0, rules[0].Score)
	assert.Equal(t, CategoryCritical, rules[0].Category)
	assert.Equal(t, "Immediate Action", rules[0].Action)
	assert.Equal(t, []string{
		"+base severity (High)",
		"Matched rules: shall [High]",
		"+15 mandatory (shall/must)",
	}, rules[0].ScoreReasons)
	assert.Equal(t, models.ScoreFlags{Mandatory: true}, rules[0].ScoreFlags)

	assert.Equal(t, "rule-002", rules[1].ControlID)
	assert.Equal(t, models.SeverityMedium, rules[1].Severity)
	assert.Equal(t, "required", rules[1].ModalVerb)
	assert.Equal(t, 45.0, rules[1].Score)
	assert.Equal(t, CategoryMedium, rules[1].Category)
	assert.Equal(t, "Review", rules[1].Action)
	assert.Contains(t, rules[1].ScoreReasons, "Matched rules: required [Medium], may [Low]")

	assert.Equal(t, "rule-003", rules[2].ControlID)
	assert.Equal(t, 100.0, rules[2].Score)
	assert.Contains(t, rules[2].ScoreReasons, "+20 penalty keyword")
	assert.Equal(t, models.ScoreFlags{Penalty: true, Mandatory: true}, rules[2].ScoreFlags)
}

func TestClassifyScore_EnforcementMention(t *testing.T) {
	score, category, flags, reasons := classifyScore(
		"The organisation must follow the PDPC decision on the SingHealth breach.", models.SeverityMedium, nil)

	assert.Equal(t, 80.0, score)
	assert.Equal(t, CategoryCritical, category)
	assert.Equal(t, models.ScoreFlags{Mandatory: true, Breach: true, Enforcement: true}, flags)
	assert.Equal(t, []string{
		"+base severity (Medium)",
		"+15 mandatory (shall/must)",
		"+10 data/security breach",
		"+10 PDPC enforcement mention",
	}, reasons)
}

func TestRegulatoryClassifier_KeepsListWithLeadIn(t *testing.T) {
	text := "The organisation must: (a) obtain consent; (b) notify the individual. Done."
	rules := NewRegulatoryClassifier(nil).Classify(text)
	require.Len(t, rules, 1)
	assert.Equal(t, text, rules[0].Text)
}

func TestRegulatoryClassifier_CustomRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []DetectionRule
		want  []string
	}{
		{
			name:  "only custom keywords fire",
			rules: []DetectionRule{{ID: "liable", Keyword: "liable", Severity: models.SeverityHigh, MatchType: MatchContains, Enabled: true}},
			want:  []string{"An organisation that contravenes this section shall be liable to a fine."},
		},
		{
			name: "must not contain excludes",
			rules: []DetectionRule{{
				ID: "shall", Keyword: "shall", Severity: models.SeverityHigh, MatchType: MatchContains, Enabled: true,
				MustNotContain: []string{"liable"},
			}},
			want: []string{"An organisation shall not collect personal data about an individual unless the individual gives consent."},
		},
		{
			name: "must also contain narrows",
			rules: []DetectionRule{{
				ID: "disclose", Keyword: `\bdisclose\b`, Severity: models.SeverityLow, MatchType: MatchRegex, Enabled: true,
				MustAlsoContain: []string{"law"},
			}},
			want: []string{"The organisation may disclose personal data where required by law."},
		},
		{
			name:  "disabled rules never fire",
			rules: []DetectionRule{{ID: "shall", Keyword: "shall", Severity: models.SeverityHigh, Enabled: false}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range NewRegulatoryClassifier(tt.rules).Classify(sampleRegulation) {
				got = append(got, r.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"A.", "B!", "C?", "D"}, splitSentences("A. B! C? D"))
	assert.Equal(t, []string{"v1.2 stays whole."}, splitSentences("v1.2 stays whole."))
}

func TestScoreCategory(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, CategoryCritical},
		{80, CategoryCritical},
		{79, CategoryHigh},
		{60, CategoryHigh},
		{40, CategoryMedium},
		{39, CategoryLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scoreCategory(tt.score), "score %v", tt.score)
	}
}
