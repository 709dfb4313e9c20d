package mux

import (
	"fmt"
	"strings"
)

// State is the dispatch state of a Multiplexer.
type State string

const (
	// Active delivers events and accepts subscription changes.
	Active State = "ACTIVE"
	// Dormant drops events and ignores subscription changes.
	Dormant State = "DORMANT"
)

func (s State) String() string { return string(s) }

// ParseState parses "active" or "dormant", case-insensitively.
func ParseState(s string) (State, error) {
	switch State(strings.ToUpper(strings.TrimSpace(s))) {
	case Active:
		return Active, nil
	case Dormant:
		return Dormant, nil
	}
	return "", fmt.Errorf("unknown multiplexer state %q (want ACTIVE or DORMANT)", s)
}
