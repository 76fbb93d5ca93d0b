// Package engine maps an utterance to a response record by testing an ordered
// table of keyword rules. The first matching rule wins; a table with no match
// answers with its fallback record.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTable = errors.New("invalid rule table")

// Record is the engine output for one utterance.
type Record struct {
	Message    string  `json:"message" yaml:"message"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Intent     string  `json:"intent" yaml:"intent"`
}

// Placeholders a record message may carry. The session fills them with live
// statistics after classification.
const (
	VarAvgResponseMS     = "{avg_response_ms}"
	VarMessagesPerSecond = "{messages_per_second}"
)

// Render returns a copy of r with every placeholder in vars replaced.
func (r Record) Render(vars map[string]string) Record {
	if len(vars) == 0 || !strings.Contains(r.Message, "{") {
		return r
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	r.Message = strings.NewReplacer(pairs...).Replace(r.Message)
	return r
}

// Rule matches when the lowercased utterance contains at least one of Any
// (if Any is set) and every entry of All.
type Rule struct {
	Name       string   `yaml:"name"`
	Any        []string `yaml:"any,omitempty"`
	All        []string `yaml:"all,omitempty"`
	Message    string   `yaml:"message"`
	Confidence float64  `yaml:"confidence"`
	Intent     string   `yaml:"intent"`
}

func (r Rule) Matches(normalized string) bool {
	if len(r.Any) == 0 && len(r.All) == 0 {
		return false
	}
	if len(r.Any) > 0 {
		hit := false
		for _, kw := range r.Any {
			if strings.Contains(normalized, kw) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, kw := range r.All {
		if !strings.Contains(normalized, kw) {
			return false
		}
	}
	return true
}

func (r Rule) Record() Record {
	return Record{Message: r.Message, Confidence: r.Confidence, Intent: r.Intent}
}

type Table struct {
	Name     string `yaml:"name"`
	Rules    []Rule `yaml:"rules"`
	Fallback Record `yaml:"fallback"`
}

// Classify never fails: it returns the first matching rule's record or the
// fallback.
func (t *Table) Classify(utterance string) Record {
	rec, _ := t.Match(utterance)
	return rec
}

// Match is Classify plus the index of the rule that fired, -1 for the fallback.
func (t *Table) Match(utterance string) (Record, int) {
	normalized := strings.ToLower(utterance)
	for i, rule := range t.Rules {
		if rule.Matches(normalized) {
			return rule.Record(), i
		}
	}
	return t.Fallback, -1
}

// Intents lists the distinct intents the table can produce, in rule order,
// fallback last.
func (t *Table) Intents() []string {
	seen := make(map[string]bool, len(t.Rules)+1)
	out := make([]string, 0, len(t.Rules)+1)
	for _, r := range t.Rules {
		if !seen[r.Intent] {
			seen[r.Intent] = true
			out = append(out, r.Intent)
		}
	}
	if !seen[t.Fallback.Intent] {
		out = append(out, t.Fallback.Intent)
	}
	return out
}

func (t *Table) Validate() error {
	if len(t.Rules) == 0 {
		return fmt.Errorf("%w: table %q has no rules", ErrInvalidTable, t.Name)
	}
	for i, r := range t.Rules {
		if len(r.Any) == 0 && len(r.All) == 0 {
			return fmt.Errorf("%w: rule %d (%s) has no keywords", ErrInvalidTable, i, r.Name)
		}
		if r.Intent == "" {
			return fmt.Errorf("%w: rule %d (%s) has no intent", ErrInvalidTable, i, r.Name)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return fmt.Errorf("%w: rule %d (%s) confidence %v outside [0,1]", ErrInvalidTable, i, r.Name, r.Confidence)
		}
		for _, kw := range append(append([]string{}, r.Any...), r.All...) {
			if kw == "" || kw != strings.ToLower(kw) {
				return fmt.Errorf("%w: rule %d (%s) keyword %q must be non-empty lowercase", ErrInvalidTable, i, r.Name, kw)
			}
		}
	}
	if t.Fallback.Message == "" || t.Fallback.Intent == "" {
		return fmt.Errorf("%w: table %q has an empty fallback", ErrInvalidTable, t.Name)
	}
	if t.Fallback.Confidence < 0 || t.Fallback.Confidence > 1 {
		return fmt.Errorf("%w: fallback confidence %v outside [0,1]", ErrInvalidTable, t.Fallback.Confidence)
	}
	return nil
}
