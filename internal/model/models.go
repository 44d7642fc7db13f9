package model

import (
	"errors"
	"fmt"
)

// Wildcard matches any value in the host or port field of a rule input.
const Wildcard = "*"

var (
	ErrInvalidFormat = errors.New("invalid address format")
	ErrInvalidHost   = errors.New("invalid host")
)

// Address is a "host:port" endpoint. In a rule input either field may be
// the Wildcard token; ports are kept as text and compared literally.
type Address struct {
	Host string
	Port string
}

// RuleEntry is an unparsed rule as read from a rule source.
type RuleEntry struct {
	Input  string
	Output string
	Origin string // where the entry came from, e.g. "line 3"; may be empty
}

// Position names the entry for messages; i is its zero-based index in the
// rule sequence.
func (e RuleEntry) Position(i int) string {
	if e.Origin != "" {
		return fmt.Sprintf("#%d (%s)", i+1, e.Origin)
	}
	return fmt.Sprintf("#%d", i+1)
}

type Rule struct {
	Input  Address
	Output Address
}

type Result struct {
	Endpoint  Address
	Output    Address
	Matched   bool
	RuleIndex int // -1 when unmatched
}
