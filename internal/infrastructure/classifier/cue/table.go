package cue

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
)

// DefaultTable is the built-in cue set. Fact cues are interrogative
// patterns asking for a specific value; scenario cues are situational or
// action words describing a sign in trouble.
func DefaultTable() []Rule {
	return []Rule{
		{Pattern: "what is", Intent: domain.IntentFact},
		{Pattern: "what are", Intent: domain.IntentFact},
		{Pattern: "which clause", Intent: domain.IntentFact},
		{Pattern: "what clause", Intent: domain.IntentFact},
		{Pattern: "what does", Intent: domain.IntentFact},
		{Pattern: "minimum", Intent: domain.IntentFact},
		{Pattern: "maximum", Intent: domain.IntentFact},
		{Pattern: "size of", Intent: domain.IntentFact},
		{Pattern: "height of", Intent: domain.IntentFact},
		{Pattern: "width of", Intent: domain.IntentFact},
		{Pattern: "dimension", Intent: domain.IntentFact},
		{Pattern: "colour of", Intent: domain.IntentFact},
		{Pattern: "color of", Intent: domain.IntentFact},

		{Pattern: "should", Intent: domain.IntentScenario},
		{Pattern: "happened", Intent: domain.IntentScenario},
		{Pattern: "damaged", Intent: domain.IntentScenario},
		{Pattern: "broken", Intent: domain.IntentScenario},
		{Pattern: "missing", Intent: domain.IntentScenario},
		{Pattern: "faded", Intent: domain.IntentScenario},
		{Pattern: "knocked", Intent: domain.IntentScenario},
		{Pattern: "fallen", Intent: domain.IntentScenario},
		{Pattern: "tilted", Intent: domain.IntentScenario},
		{Pattern: "obstructed", Intent: domain.IntentScenario},
		{Pattern: "how do i", Intent: domain.IntentScenario},
		{Pattern: "how should", Intent: domain.IntentScenario},
		{Pattern: "what to do", Intent: domain.IntentScenario},
		{Pattern: "intersection", Intent: domain.IntentScenario},
		{Pattern: "accident", Intent: domain.IntentScenario},
		{Pattern: "storm", Intent: domain.IntentScenario},
		{Pattern: "repair", Intent: domain.IntentScenario},
		{Pattern: "replace", Intent: domain.IntentScenario},
		{Pattern: "fix", Intent: domain.IntentScenario},
	}
}

type tableFile struct {
	Cues []struct {
		Pattern string `yaml:"pattern"`
		Intent  string `yaml:"intent"`
	} `yaml:"cues"`
}

// LoadTable reads a cue table from a YAML file. The file fully replaces the
// default table so operators can tune the cue set without a rebuild.
func LoadTable(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cue table: %w", err)
	}

	var parsed tableFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse cue table: %w", err)
	}
	if len(parsed.Cues) == 0 {
		return nil, fmt.Errorf("cue table %s: no cues defined", path)
	}

	rules := make([]Rule, 0, len(parsed.Cues))
	for i, c := range parsed.Cues {
		intent, err := parseIntent(c.Intent)
		if err != nil {
			return nil, fmt.Errorf("cue table %s: cue %d: %w", path, i, err)
		}
		rules = append(rules, Rule{Pattern: c.Pattern, Intent: intent})
	}
	return rules, nil
}

func parseIntent(s string) (domain.Intent, error) {
	switch s {
	case "fact":
		return domain.IntentFact, nil
	case "scenario":
		return domain.IntentScenario, nil
	default:
		return domain.IntentUnknown, fmt.Errorf("unknown intent %q (want fact or scenario)", s)
	}
}
