package analysis

import (
	"slices"

	"github.com/Sumatoshi-tech/pacelog/pkg/flow"
	"github.com/Sumatoshi-tech/pacelog/pkg/pairing"
	"github.com/Sumatoshi-tech/pacelog/pkg/stats"
)

// percentScale converts a fraction to a percentage.
const percentScale = 100

// SignalResult is the pairing outcome of one signal flow.
type SignalResult struct {
	Signal      int64
	Events      int
	Changes     int
	Detects     int
	Pairs       []pairing.Pair
	Anomalies   []pairing.Anomaly
	ChangeTimes []int64
}

// Evaluate runs pair matching and anomaly classification over one flow.
func Evaluate(signal int64, f flow.Flow) SignalResult {
	starts := pairing.Match(f)
	changes, detects := f.Counts()

	return SignalResult{
		Signal:      signal,
		Events:      len(f),
		Changes:     changes,
		Detects:     detects,
		Pairs:       pairing.Pairs(f, starts),
		Anomalies:   pairing.Classify(f, starts),
		ChangeTimes: f.ChangeTimes(),
	}
}

// MaxPair returns the first pair with the largest delay.
func (r SignalResult) MaxPair() (pairing.Pair, bool) {
	if len(r.Pairs) == 0 {
		return pairing.Pair{}, false
	}

	best := r.Pairs[0]

	for _, p := range r.Pairs[1:] {
		if p.Delay() > best.Delay() {
			best = p
		}
	}

	return best, true
}

// Accumulator folds per-signal results into global totals. It is a value
// type: Add returns a new accumulator and never mutates the receiver.
type Accumulator struct {
	threshold int64
	mode      SpacingMode

	signals    int
	events     int
	changes    int
	detects    int
	pairs      int
	anomalies  int
	totalDelay int64

	spacingSum   int64
	spacingTerms int

	delays    []int64
	outliers  []Outlier
	perSignal []SignalSummary
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator(threshold int64, mode SpacingMode) Accumulator {
	return Accumulator{threshold: threshold, mode: mode}
}

// Add folds one signal result into the totals.
func (a Accumulator) Add(r SignalResult) Accumulator {
	a.signals++
	a.events += r.Events
	a.changes += r.Changes
	a.detects += r.Detects
	a.pairs += len(r.Pairs)
	a.anomalies += len(r.Anomalies)

	summary := SignalSummary{
		Signal:     r.Signal,
		Events:     r.Events,
		Changes:    r.Changes,
		Detects:    r.Detects,
		ValidPairs: len(r.Pairs),
		Anomalies:  len(r.Anomalies),
	}

	delays := slices.Clip(a.delays)

	for _, p := range r.Pairs {
		d := p.Delay()
		summary.TotalDelay += d
		delays = append(delays, d)
	}

	a.delays = delays
	a.totalDelay += summary.TotalDelay

	for i := 1; i < len(r.ChangeTimes); i++ {
		a.spacingSum += r.ChangeTimes[i] - r.ChangeTimes[i-1]
		a.spacingTerms++
	}

	if best, ok := r.MaxPair(); ok {
		summary.MaxDelay = best.Delay()

		if best.Delay() > a.threshold {
			a.outliers = append(slices.Clip(a.outliers), Outlier{
				Signal:   r.Signal,
				MaxDelay: best.Delay(),
				Position: best.Start,
				Event:    best.Change,
			})
		}
	}

	a.perSignal = append(slices.Clip(a.perSignal), summary)

	return a
}

// Statistics finalizes the fold.
func (a Accumulator) Statistics() *Statistics {
	spacingDen := a.changes
	if a.mode == SpacingCorrected {
		spacingDen = a.spacingTerms
	}

	return &Statistics{
		Signals:          a.signals,
		TotalEvents:      a.events,
		ChangeCount:      a.changes,
		DetectCount:      a.detects,
		ValidPairs:       a.pairs,
		TotalDelay:       a.totalDelay,
		AverageDelay:     Ratio(float64(a.totalDelay), float64(a.pairs)),
		ErrorCount:       a.anomalies,
		ErrorPercentage:  Ratio(float64(a.anomalies)*percentScale, float64(a.events)),
		AvgChangeSpacing: Ratio(float64(a.spacingSum), float64(spacingDen)),
		SpacingMode:      a.mode,
		OutlierThreshold: a.threshold,
		Outliers:         append([]Outlier{}, a.outliers...),
		Delays:           stats.Summarize(a.delays),
		PerSignal:        append([]SignalSummary{}, a.perSignal...),
	}
}
