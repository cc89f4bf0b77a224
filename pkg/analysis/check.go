package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/pacelog/pkg/flow"
)

// ErrGroupCountMismatch is wrapped by *GroupCountMismatchError.
var ErrGroupCountMismatch = errors.New("change/detect group mismatch")

// Mismatch describes a signal whose Change and Detect counts differ. A signal
// seen only as Changes (or only as Detects) has a zero on the other side.
type Mismatch struct {
	Signal  int64 `json:"signal" yaml:"signal"`
	Changes int   `json:"changes" yaml:"changes"`
	Detects int   `json:"detects" yaml:"detects"`
}

// GroupCountMismatchError is returned in strict mode when any signal is
// unbalanced.
type GroupCountMismatchError struct {
	Mismatches []Mismatch
}

func (e *GroupCountMismatchError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, fmt.Sprintf("signal %d: %d changes, %d detects", m.Signal, m.Changes, m.Detects))
	}

	return fmt.Sprintf("%s: %s", ErrGroupCountMismatch, strings.Join(parts, "; "))
}

// Unwrap allows errors.Is(err, ErrGroupCountMismatch).
func (e *GroupCountMismatchError) Unwrap() error {
	return ErrGroupCountMismatch
}

// CheckBalance returns the signals whose Change and Detect counts differ, in
// ascending signal order. This covers both a signal id missing from one side
// and a per-signal count difference.
func CheckBalance(set flow.Set) []Mismatch {
	var out []Mismatch

	for _, id := range set.Signals() {
		changes, detects := set[id].Counts()
		if changes != detects {
			out = append(out, Mismatch{Signal: id, Changes: changes, Detects: detects})
		}
	}

	return out
}
