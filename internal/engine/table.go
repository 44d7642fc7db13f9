package engine

import (
	"fmt"

	"nat-flow-resolver/internal/model"
)

// Table is an ordered set of translation rules. Order is match priority:
// the earliest rule whose input matches an endpoint wins. A Table is not
// modified after construction and may be shared between goroutines.
type Table struct {
	rules []model.Rule
}

// Shadow describes a rule that can never match because an earlier rule
// matches everything it would.
type Shadow struct {
	Index   int
	ByIndex int
	Rule    model.Rule
	ByRule  model.Rule
}

// BuildTable parses every entry into a rule. The first entry that fails to
// parse aborts construction and no table is returned.
func BuildTable(entries []model.RuleEntry) (*Table, error) {
	rules := make([]model.Rule, 0, len(entries))
	for i, entry := range entries {
		rule, err := ParseRule(entry)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", entry.Position(i), err)
		}
		rules = append(rules, rule)
	}
	return &Table{rules: rules}, nil
}

// NewTable creates a table from already parsed rules, keeping their order.
func NewTable(rules []model.Rule) *Table {
	copied := make([]model.Rule, len(rules))
	copy(copied, rules)
	return &Table{rules: copied}
}

// ParseRule parses both addresses of a rule entry.
func ParseRule(entry model.RuleEntry) (model.Rule, error) {
	input, err := model.ParseAddress(entry.Input)
	if err != nil {
		return model.Rule{}, fmt.Errorf("input: %w", err)
	}
	output, err := model.ParseAddress(entry.Output)
	if err != nil {
		return model.Rule{}, fmt.Errorf("output: %w", err)
	}
	return model.Rule{Input: input, Output: output}, nil
}

func (t *Table) Len() int {
	return len(t.rules)
}

// Rules returns a copy of the rules in match order.
func (t *Table) Rules() []model.Rule {
	return NewTable(t.rules).rules
}

// Match returns the index of the first rule whose input matches endpoint.
// Host and port are compared as exact strings; "*" in the rule matches anything.
func (t *Table) Match(endpoint model.Address) (int, bool) {
	for i := range t.rules {
		if t.rules[i].Input.Covers(endpoint) {
			return i, true
		}
	}
	return -1, false
}

// FindFirstMatch returns the output address of the first matching rule.
func (t *Table) FindFirstMatch(endpoint model.Address) (model.Address, bool) {
	i, ok := t.Match(endpoint)
	if !ok {
		return model.Address{}, false
	}
	return t.rules[i].Output, true
}

// Shadowed lists rules made unreachable by an earlier, broader or equal rule.
// Each shadowed rule is reported once, against the first rule covering it.
func (t *Table) Shadowed() []Shadow {
	var shadows []Shadow
	for j := 1; j < len(t.rules); j++ {
		for i := 0; i < j; i++ {
			if t.rules[i].Input.Covers(t.rules[j].Input) {
				shadows = append(shadows, Shadow{
					Index:   j,
					ByIndex: i,
					Rule:    t.rules[j],
					ByRule:  t.rules[i],
				})
				break
			}
		}
	}
	return shadows
}
