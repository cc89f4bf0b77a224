// Package event defines the change/detection events recorded by the
// instrumented detector and parses them from their textual log form.
package event

import (
	"errors"
	"fmt"
)

// Kind is the type of a recorded event.
type Kind uint8

// Event kinds. Change sorts before Detect.
const (
	Change Kind = iota
	Detect
)

// Kind characters used in the log format.
const (
	changeChar = 'C'
	detectChar = 'D'
)

// String returns the single-character log form of the kind.
func (k Kind) String() string {
	switch k {
	case Change:
		return string(changeChar)
	case Detect:
		return string(detectChar)
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// MarshalText encodes the kind as its log character.
func (k Kind) MarshalText() ([]byte, error) {
	if k != Change && k != Detect {
		return nil, fmt.Errorf("%w: %d", errUnknownKind, uint8(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText decodes a log character into the kind.
func (k *Kind) UnmarshalText(text []byte) error {
	if len(text) != 1 {
		return fmt.Errorf("%w: %q", errUnknownKind, text)
	}

	parsed, ok := KindFromChar(text[0])
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownKind, text)
	}

	*k = parsed

	return nil
}

// KindFromChar maps a log kind character to a Kind.
func KindFromChar(c byte) (Kind, bool) {
	switch c {
	case changeChar:
		return Change, true
	case detectChar:
		return Detect, true
	default:
		return 0, false
	}
}

var errUnknownKind = errors.New("unknown event kind")

// Event is a single parsed log record.
type Event struct {
	Kind      Kind  `json:"kind" yaml:"kind"`
	Signal    int64 `json:"signal" yaml:"signal"`
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`
	// Line is the 1-based index of the record among the non-empty log lines.
	Line int `json:"line" yaml:"line"`
}

// String renders the event in its log form.
func (e Event) String() string {
	return fmt.Sprintf("%s %d %d", e.Kind, e.Signal, e.Timestamp)
}

// Compare orders events by timestamp, placing a Change before a Detect at the
// same instant. It is suitable for slices.SortStableFunc.
func Compare(a, b Event) int {
	switch {
	case a.Timestamp < b.Timestamp:
		return -1
	case a.Timestamp > b.Timestamp:
		return 1
	case a.Kind < b.Kind:
		return -1
	case a.Kind > b.Kind:
		return 1
	default:
		return 0
	}
}
