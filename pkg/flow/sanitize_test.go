package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pacelog/pkg/event"
	"github.com/Sumatoshi-tech/pacelog/pkg/flow"
)

func flowOf(pattern string) flow.Flow {
	f := make(flow.Flow, 0, len(pattern))

	for i, c := range []byte(pattern) {
		kind, _ := event.KindFromChar(c)
		f = append(f, ev(kind, 1, int64(i*10), i+1))
	}

	return f
}

func TestSanitize_CollapsesRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		out      string
		removals int
	}{
		{name: "empty", in: "", out: "", removals: 0},
		{name: "single", in: "C", out: "C", removals: 0},
		{name: "alternating", in: "CDCD", out: "CDCD", removals: 0},
		{name: "duplicate_change", in: "CCD", out: "CD", removals: 1},
		{name: "duplicate_detect", in: "CDD", out: "CD", removals: 1},
		{name: "long_run", in: "CCCCD", out: "CD", removals: 3},
		{name: "mixed_runs", in: "DDCCDDDC", out: "DCDC", removals: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kept, removed := flow.Sanitize(flowOf(tt.in))
			assert.Equal(t, tt.out, kinds(kept))
			assert.Len(t, removed, tt.removals)
		})
	}
}

func TestSanitize_KeepsLaterEventAndReportsNeighbor(t *testing.T) {
	t.Parallel()

	f := flow.Flow{
		ev(event.Change, 7, 10, 1),
		ev(event.Change, 7, 12, 2),
		ev(event.Detect, 7, 20, 3),
	}

	kept, removed := flow.Sanitize(f)

	require.Len(t, kept, 2)
	assert.Equal(t, 2, kept[0].Line)

	require.Len(t, removed, 1)
	assert.Equal(t, int64(7), removed[0].Signal)
	assert.Equal(t, 1, removed[0].Removed.Line)
	assert.Equal(t, 2, removed[0].Neighbor.Line)
}

func TestSanitize_Idempotent(t *testing.T) {
	t.Parallel()

	for _, pattern := range []string{"CCDDCD", "DCCCDDC", "C", "DDDD", "CDCDDC"} {
		once, _ := flow.Sanitize(flowOf(pattern))
		twice, removed := flow.Sanitize(once)

		assert.Equal(t, once, twice, pattern)
		assert.Empty(t, removed, pattern)
	}
}

func TestSanitizeSet_OrdersRemovalsBySignal(t *testing.T) {
	t.Parallel()

	set := flow.Group([]event.Event{
		ev(event.Change, 9, 1, 1),
		ev(event.Change, 9, 2, 2),
		ev(event.Detect, 3, 3, 3),
		ev(event.Detect, 3, 4, 4),
	})

	out, removed := flow.SanitizeSet(set)

	require.Len(t, removed, 2)
	assert.Equal(t, int64(3), removed[0].Signal)
	assert.Equal(t, int64(9), removed[1].Signal)
	assert.Len(t, out[3], 1)
	assert.Len(t, out[9], 1)
	assert.Len(t, set[9], 2, "input set must not be modified")
}

func TestFilterEvents_DropsRemovedLines(t *testing.T) {
	t.Parallel()

	events := []event.Event{
		ev(event.Change, 1, 10, 1),
		ev(event.Change, 1, 10, 2),
		ev(event.Detect, 1, 20, 3),
		ev(event.Detect, 2, 20, 4),
	}

	_, removed := flow.SanitizeSet(flow.Group(events))
	kept := flow.FilterEvents(events, removed)

	require.Len(t, kept, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{kept[0].Line, kept[1].Line, kept[2].Line})
}
