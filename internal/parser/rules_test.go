package parser

import (
	"errors"
	"strings"
	"testing"

	"nat-flow-resolver/internal/model"
)

func TestParseRuleEntriesSplitsAndTrims(t *testing.T) {
	input := strings.Join([]string{
		"# translation table",
		"*:*, 9.9.9.9:1",
		"",
		"  1.1.1.1:22 ,2.2.2.2:33\r",
		"10.0.0.1:*,10.0.0.2:8080",
	}, "\n")

	entries, err := ParseRuleEntries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []model.RuleEntry{
		{Input: "*:*", Output: "9.9.9.9:1", Origin: "line 2"},
		{Input: "1.1.1.1:22", Output: "2.2.2.2:33", Origin: "line 4"},
		{Input: "10.0.0.1:*", Output: "10.0.0.2:8080", Origin: "line 5"},
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: expected %#v, got %#v", i, want[i], entries[i])
		}
	}
}

func TestParseRuleEntriesRejectsWrongFieldCount(t *testing.T) {
	for _, line := range []string{"1.1.1.1:22", "1.1.1.1:22,2.2.2.2:33,3.3.3.3:44"} {
		_, err := ParseRuleEntries(strings.NewReader("*:*,9.9.9.9:1\n" + line + "\n"))
		if !errors.Is(err, model.ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat for %q, got %v", line, err)
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Errorf("expected error to name line 2, got %v", err)
		}
	}
}

func TestParseRuleEntriesEmpty(t *testing.T) {
	entries, err := ParseRuleEntries(strings.NewReader(""))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestParseYAMLRuleEntries(t *testing.T) {
	doc := `rules:
  - input: "*:*"
    output: "9.9.9.9:1"
  - input: "1.1.1.1:22"
    output: " 2.2.2.2:33 "
`
	entries, err := ParseYAMLRuleEntries(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Input != "*:*" || entries[0].Output != "9.9.9.9:1" {
		t.Errorf("unexpected first entry %#v", entries[0])
	}
	if entries[1].Output != "2.2.2.2:33" {
		t.Errorf("expected output to be trimmed, got %q", entries[1].Output)
	}
	if entries[1].Origin != "line 4" {
		t.Errorf("expected origin line 4, got %q", entries[1].Origin)
	}
}

func TestParseYAMLRuleEntriesErrors(t *testing.T) {
	if _, err := ParseYAMLRuleEntries(strings.NewReader("rules: [")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
	if _, err := ParseYAMLRuleEntries(strings.NewReader("rules:\n  - [1, 2]\n")); err == nil {
		t.Fatalf("expected error for list item that is not a mapping")
	}

	entries, err := ParseYAMLRuleEntries(strings.NewReader(""))
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty document to yield no entries, got %v, %v", entries, err)
	}
}
