// Package cue implements the rule-based query classifier: a configurable
// table of lexical cues votes on whether a question asks for a fact or
// describes a scenario. The classifier is a pure function of the query text
// and its table, so identical inputs always classify identically.
package cue

import (
	"strings"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
)

// Rule maps one lowercase substring cue to an intent vote.
type Rule struct {
	Pattern string
	Intent  domain.Intent
}

type Classifier struct {
	rules []Rule
}

// New builds a classifier from a cue table. Patterns are matched as
// case-insensitive substrings; rules with empty patterns are dropped.
func New(rules []Rule) *Classifier {
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		pattern := strings.ToLower(strings.TrimSpace(r.Pattern))
		if pattern == "" {
			continue
		}
		kept = append(kept, Rule{Pattern: pattern, Intent: r.Intent})
	}
	return &Classifier{rules: kept}
}

// Classify returns the majority intent among matched cues. No match or a
// tied vote yields IntentUnknown, which downstream treats as "produce a
// general-purpose answer" rather than an error.
func (c *Classifier) Classify(text string) domain.Intent {
	text = strings.ToLower(text)

	var factVotes, scenarioVotes int
	for _, r := range c.rules {
		if !strings.Contains(text, r.Pattern) {
			continue
		}
		switch r.Intent {
		case domain.IntentFact:
			factVotes++
		case domain.IntentScenario:
			scenarioVotes++
		}
	}

	switch {
	case factVotes > scenarioVotes:
		return domain.IntentFact
	case scenarioVotes > factVotes:
		return domain.IntentScenario
	default:
		return domain.IntentUnknown
	}
}
