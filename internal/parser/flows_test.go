package parser

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestFlowScannerSkipsBlankLines(t *testing.T) {
	s := NewFlowScanner(strings.NewReader("1.1.1.1:22\n\n  3.3.3.3:44  \n# comment\n5.5.5.5:66"))

	var got []FlowLine
	for {
		line, ok := s.Next()
		if !ok {
			break
		}
		got = append(got, line)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []FlowLine{
		{Line: 1, Text: "1.1.1.1:22"},
		{Line: 3, Text: "3.3.3.3:44"},
		{Line: 5, Text: "5.5.5.5:66"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d (%#v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %#v, got %#v", i, want[i], got[i])
		}
	}
}

func TestFlowScannerReportsReadError(t *testing.T) {
	boom := errors.New("boom")
	s := NewFlowScanner(iotest.ErrReader(boom))
	if _, ok := s.Next(); ok {
		t.Fatalf("expected no line from failing reader")
	}
	if !errors.Is(s.Err(), boom) {
		t.Fatalf("expected read error, got %v", s.Err())
	}
}
