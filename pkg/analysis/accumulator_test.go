package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/pacelog/pkg/event"
	"github.com/Sumatoshi-tech/pacelog/pkg/flow"
)

func flowOf(signal int64, pattern string, times ...int64) flow.Flow {
	f := make(flow.Flow, 0, len(pattern))

	for i, c := range []byte(pattern) {
		kind, _ := event.KindFromChar(c)
		f = append(f, event.Event{Kind: kind, Signal: signal, Timestamp: times[i], Line: i + 1})
	}

	return f
}

func TestAccumulator_AddDoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := NewAccumulator(DefaultOutlierThreshold, SpacingLiteral).
		Add(Evaluate(1, flowOf(1, "CD", 0, 5)))

	left := base.Add(Evaluate(2, flowOf(2, "CD", 0, 7)))
	right := base.Add(Evaluate(3, flowOf(3, "CD", 0, 9)))

	assert.Equal(t, 1, base.Statistics().ValidPairs)
	assert.Equal(t, int64(12), left.Statistics().TotalDelay)
	assert.Equal(t, int64(14), right.Statistics().TotalDelay)
	assert.Equal(t, []int64{1, 2}, signalsOf(left.Statistics()))
	assert.Equal(t, []int64{1, 3}, signalsOf(right.Statistics()))
}

func TestAccumulator_OutlierUsesFirstMaximum(t *testing.T) {
	t.Parallel()

	r := Evaluate(1, flowOf(1, "CDCD", 0, 60, 100, 160))

	best, ok := r.MaxPair()
	assert.True(t, ok)
	assert.Equal(t, 0, best.Start)

	st := NewAccumulator(DefaultOutlierThreshold, SpacingLiteral).Add(r).Statistics()
	assert.Len(t, st.Outliers, 1)
	assert.Equal(t, 0, st.Outliers[0].Position)
}

func TestAccumulator_NoPairsMeansNoMaxPair(t *testing.T) {
	t.Parallel()

	r := Evaluate(1, flowOf(1, "DC", 0, 1))

	_, ok := r.MaxPair()
	assert.False(t, ok)

	st := NewAccumulator(DefaultOutlierThreshold, SpacingLiteral).Add(r).Statistics()
	assert.False(t, st.AverageDelay.Defined)
	assert.Equal(t, 2, st.ErrorCount)
}

func signalsOf(st *Statistics) []int64 {
	out := make([]int64, 0, len(st.PerSignal))
	for _, s := range st.PerSignal {
		out = append(out, s.Signal)
	}

	return out
}
