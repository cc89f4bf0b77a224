// Package pairing finds the valid change→detection transitions in a signal
// flow and classifies every event left over as an anomaly.
package pairing

import (
	"github.com/Sumatoshi-tech/pacelog/pkg/event"
	"github.com/Sumatoshi-tech/pacelog/pkg/flow"
)

// pairWidth is the number of positions a valid pair occupies.
const pairWidth = 2

// Pair is a Change at Start immediately followed by a Detect at Start+1.
type Pair struct {
	Start  int
	Change event.Event
	Detect event.Event
}

// Delay is the detection latency of the pair.
func (p Pair) Delay() int64 {
	return p.Detect.Timestamp - p.Change.Timestamp
}

// Match scans the flow left to right and returns the start positions of all
// non-overlapping Change-then-Detect windows. A match consumes both events.
func Match(f flow.Flow) []int {
	var starts []int

	for p := 0; p+1 < len(f); {
		if f[p].Kind == event.Change && f[p+1].Kind == event.Detect {
			starts = append(starts, p)
			p += pairWidth

			continue
		}

		p++
	}

	return starts
}

// Pairs resolves start positions returned by Match into pairs.
func Pairs(f flow.Flow, starts []int) []Pair {
	pairs := make([]Pair, 0, len(starts))

	for _, p := range starts {
		pairs = append(pairs, Pair{Start: p, Change: f[p], Detect: f[p+1]})
	}

	return pairs
}
