package flow

import "github.com/Sumatoshi-tech/pacelog/pkg/event"

// Removal records an event dropped by Sanitize as a spurious duplicate.
type Removal struct {
	Signal int64
	// Removed is the earlier event of a same-kind adjacent pair.
	Removed event.Event
	// Neighbor is the following event of the same kind that superseded it.
	Neighbor event.Event
}

// Sanitize removes the earlier event of every adjacent same-kind pair until no
// such pair remains, so a run of k equal kinds collapses to its last event.
//
// This is a heuristic for duplicate notifications emitted under contention.
// A genuine retry is indistinguishable from a duplicate and is dropped too.
func Sanitize(f Flow) (Flow, []Removal) {
	if len(f) < 2 {
		return f, nil
	}

	kept := make(Flow, 0, len(f))

	var removed []Removal

	for i, ev := range f {
		if i+1 < len(f) && f[i+1].Kind == ev.Kind {
			removed = append(removed, Removal{Signal: ev.Signal, Removed: ev, Neighbor: f[i+1]})

			continue
		}

		kept = append(kept, ev)
	}

	return kept, removed
}

// SanitizeSet applies Sanitize to every flow, returning a new set and the
// removals ordered by signal id.
func SanitizeSet(s Set) (Set, []Removal) {
	out := make(Set, len(s))

	var removed []Removal

	for _, id := range s.Signals() {
		kept, r := Sanitize(s[id])
		out[id] = kept
		removed = append(removed, r...)
	}

	return out, removed
}

// FilterEvents drops the removed events from a file-ordered event list,
// keeping the raw log consistent with the sanitized flows.
func FilterEvents(events []event.Event, removals []Removal) []event.Event {
	if len(removals) == 0 {
		return events
	}

	drop := make(map[int]struct{}, len(removals))
	for _, r := range removals {
		drop[r.Removed.Line] = struct{}{}
	}

	kept := make([]event.Event, 0, len(events)-len(drop))

	for _, ev := range events {
		if _, ok := drop[ev.Line]; ok {
			continue
		}

		kept = append(kept, ev)
	}

	return kept
}
