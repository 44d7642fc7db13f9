package parser

import (
	"bufio"
	"io"
	"strings"
)

// FlowLine is one non-blank line of a flow source.
type FlowLine struct {
	Line int
	Text string
}

// FlowScanner yields flow endpoints line by line without validating them.
type FlowScanner struct {
	scanner *bufio.Scanner
	lineNo  int
}

func NewFlowScanner(r io.Reader) *FlowScanner {
	return &FlowScanner{scanner: bufio.NewScanner(r)}
}

// Next returns the next trimmed line, skipping blanks and # comments. It returns false at the end
// of input or on a read error; check Err afterwards.
func (s *FlowScanner) Next() (FlowLine, bool) {
	for s.scanner.Scan() {
		s.lineNo++
		text := strings.TrimSpace(s.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return FlowLine{Line: s.lineNo, Text: text}, true
	}
	return FlowLine{}, false
}

func (s *FlowScanner) Err() error {
	return s.scanner.Err()
}
