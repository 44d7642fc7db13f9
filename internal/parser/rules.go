package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"nat-flow-resolver/internal/model"

	"gopkg.in/yaml.v3"
)

// ParseRuleEntries reads one "IN,OUT" rule per line. Blank lines and lines
// starting with '#' are skipped. Addresses are not validated here.
func ParseRuleEntries(r io.Reader) ([]model.RuleEntry, error) {
	scanner := bufio.NewScanner(r)
	var entries []model.RuleEntry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: %w: expected two comma-separated fields in %q", lineNo, model.ErrInvalidFormat, line)
		}

		entries = append(entries, model.RuleEntry{
			Input:  strings.TrimSpace(parts[0]),
			Output: strings.TrimSpace(parts[1]),
			Origin: fmt.Sprintf("line %d", lineNo),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading rules: %w", err)
	}
	return entries, nil
}

type yamlRuleFile struct {
	Rules []yaml.Node `yaml:"rules"`
}

type yamlRule struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// ParseYAMLRuleEntries reads rules from a YAML document of the form
//
//	rules:
//	  - input: "*:*"
//	    output: "9.9.9.9:1"
//
// Entries keep the line number of their list item.
func ParseYAMLRuleEntries(r io.Reader) ([]model.RuleEntry, error) {
	var doc yamlRuleFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("error decoding yaml rules: %w", err)
	}

	entries := make([]model.RuleEntry, 0, len(doc.Rules))
	for i := range doc.Rules {
		node := &doc.Rules[i]
		var rule yamlRule
		if err := node.Decode(&rule); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		entries = append(entries, model.RuleEntry{
			Input:  strings.TrimSpace(rule.Input),
			Output: strings.TrimSpace(rule.Output),
			Origin: fmt.Sprintf("line %d", node.Line),
		})
	}
	return entries, nil
}
