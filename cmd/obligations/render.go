package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Itish41/ReguGuard/models"
	"github.com/Itish41/ReguGuard/obligation"
	services "github.com/Itish41/ReguGuard/service"
)

// renderFlags holds the resolved flags of the render command.
type renderFlags struct {
	format    string
	diff      bool
	sentence  bool
	rulesFile string
}

// renderedRule is one output record.
type renderedRule struct {
	models.Rule `yaml:",inline"`
	Rendering   obligation.Rendering `json:"rendering" yaml:"rendering"`
	Diff        string               `json:"diff,omitempty" yaml:"diff,omitempty"`
}

func newRenderCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Classify text and print every obligation with its renderings",
		Long:  "Reads a text file (or stdin when no file or '-' is given). Flags can also be set through REGUGUARD_* environment variables, e.g. REGUGUARD_FORMAT=yaml.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := renderFlags{
				format:    strings.ToLower(v.GetString("format")),
				diff:      v.GetBool("diff"),
				sentence:  v.GetBool("sentence"),
				rulesFile: v.GetString("rules"),
			}
			return runRender(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.String("format", "json", "Output format: json or yaml")
	f.Bool("diff", false, "Add a character diff between each sentence and its action statement")
	f.Bool("sentence", false, "Render the whole input as a single sentence instead of classifying it")
	f.String("rules", "", "YAML file with custom detection_rules")

	v.SetEnvPrefix("REGUGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(f); err != nil {
		panic(fmt.Sprintf("binding render flags: %v", err))
	}
	return cmd
}

func runRender(cmd *cobra.Command, args []string, flags renderFlags) error {
	if flags.format != "json" && flags.format != "yaml" {
		return fmt.Errorf("unknown format %q: use json or yaml", flags.format)
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var rules []models.Rule
	if flags.sentence {
		if s := obligation.Normalize(text); s != "" {
			rules = []models.Rule{{ControlID: "rule-001", Text: s, Severity: models.SeverityUnknown}}
		}
	} else {
		var custom []services.DetectionRule
		if flags.rulesFile != "" {
			if custom, err = loadDetectionRules(flags.rulesFile); err != nil {
				return err
			}
		}
		rules = services.NewRegulatoryClassifier(custom).Classify(text)
	}

	out := make([]renderedRule, 0, len(rules))
	for _, r := range rules {
		rr := renderedRule{Rule: r, Rendering: obligation.Render(r.Text)}
		if flags.diff {
			rr.Diff = sentenceDiff(r.Text, rr.Rendering.Statement)
		}
		out = append(out, rr)
	}

	w := cmd.OutOrStdout()
	if flags.format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// ruleSpec is the on-disk form of a detection rule; enabled defaults to true.
type ruleSpec struct {
	ID              string   `yaml:"id"`
	Keyword         string   `yaml:"keyword"`
	Severity        string   `yaml:"severity"`
	MatchType       string   `yaml:"match_type"`
	Enabled         *bool    `yaml:"enabled"`
	MustAlsoContain []string `yaml:"must_also_contain"`
	MustNotContain  []string `yaml:"must_not_contain"`
}

func loadDetectionRules(path string) ([]services.DetectionRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var file struct {
		DetectionRules []ruleSpec `yaml:"detection_rules"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if len(file.DetectionRules) == 0 {
		return nil, fmt.Errorf("rules file %s has no detection_rules", path)
	}

	rules := make([]services.DetectionRule, 0, len(file.DetectionRules))
	for i, s := range file.DetectionRules {
		if strings.TrimSpace(s.Keyword) == "" {
			return nil, fmt.Errorf("detection_rules[%d]: keyword is required", i)
		}
		id := s.ID
		if id == "" {
			id = strings.ToLower(s.Keyword)
		}
		rules = append(rules, services.DetectionRule{
			ID:              id,
			Keyword:         s.Keyword,
			Severity:        models.ParseSeverity(s.Severity),
			MatchType:       s.MatchType,
			Enabled:         s.Enabled == nil || *s.Enabled,
			MustAlsoContain: s.MustAlsoContain,
			MustNotContain:  s.MustNotContain,
		})
	}
	return rules, nil
}

// sentenceDiff marks deletions as [-x-] and insertions as {+x+}.
func sentenceDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
