package pairing

import (
	"github.com/Sumatoshi-tech/pacelog/pkg/event"
	"github.com/Sumatoshi-tech/pacelog/pkg/flow"
)

// Rule names the classification rule that marked an event anomalous.
type Rule string

// Classification rules.
const (
	// RuleNoPairs applies when the flow has no valid pair at all.
	RuleNoPairs Rule = "no-pairs"
	// RuleLeading covers events before the first valid pair.
	RuleLeading Rule = "leading"
	// RuleGap covers events between two valid pairs.
	RuleGap Rule = "gap"
	// RuleTrailing covers events after the last valid pair.
	RuleTrailing Rule = "trailing"
)

// Anomaly is an event not covered by a valid pair.
type Anomaly struct {
	Position int
	Event    event.Event
	Rule     Rule
}

// Classify returns every event of f not covered by the pairs starting at
// starts, in flow order. starts must be ascending and non-overlapping, as
// returned by Match.
func Classify(f flow.Flow, starts []int) []Anomaly {
	if len(starts) == 0 {
		return span(f, 0, len(f), RuleNoPairs)
	}

	anomalies := span(f, 0, starts[0], RuleLeading)

	for i := 1; i < len(starts); i++ {
		anomalies = append(anomalies, span(f, starts[i-1]+pairWidth, starts[i], RuleGap)...)
	}

	last := starts[len(starts)-1]

	return append(anomalies, span(f, last+pairWidth, len(f), RuleTrailing)...)
}

// Count returns the number of anomalies in a flow of length n with the given
// pair starts, without materializing them.
func Count(n int, starts []int) int {
	k := len(starts)
	if k == 0 {
		return n
	}

	count := starts[0]

	for i := 1; i < k; i++ {
		count += starts[i] - starts[i-1] - pairWidth
	}

	return count + n - (starts[k-1] + pairWidth)
}

func span(f flow.Flow, from, to int, rule Rule) []Anomaly {
	if from >= to {
		return nil
	}

	out := make([]Anomaly, 0, to-from)

	for p := from; p < to; p++ {
		out = append(out, Anomaly{Position: p, Event: f[p], Rule: rule})
	}

	return out
}
