// Package flow groups events per signal into time-ordered flows and provides
// the optional duplicate-suppression pass over them.
package flow

import (
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/pacelog/pkg/event"
)

// Flow is the ordered event sequence of one signal. Events are sorted by
// timestamp with Change before Detect on ties; equal keys keep arrival order.
type Flow []event.Event

// Set maps a signal id to its flow.
type Set map[int64]Flow

// Group partitions events by signal and orders each flow.
func Group(events []event.Event) Set {
	set := make(Set)

	for _, ev := range events {
		set[ev.Signal] = append(set[ev.Signal], ev)
	}

	for id, f := range set {
		slices.SortStableFunc(f, event.Compare)
		set[id] = f
	}

	return set
}

// Signals returns the signal ids in ascending order.
func (s Set) Signals() []int64 {
	return slices.Sorted(maps.Keys(s))
}

// Len returns the total number of events across all flows.
func (s Set) Len() int {
	total := 0

	for _, f := range s {
		total += len(f)
	}

	return total
}

// Counts returns the number of Change and Detect events in the flow.
func (f Flow) Counts() (changes, detects int) {
	for _, ev := range f {
		if ev.Kind == event.Change {
			changes++
		} else {
			detects++
		}
	}

	return changes, detects
}

// ChangeTimes returns the timestamps of the flow's Change events in order.
func (f Flow) ChangeTimes() []int64 {
	var times []int64

	for _, ev := range f {
		if ev.Kind == event.Change {
			times = append(times, ev.Timestamp)
		}
	}

	return times
}
