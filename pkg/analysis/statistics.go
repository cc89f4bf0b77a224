package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/pacelog/pkg/event"
	"github.com/Sumatoshi-tech/pacelog/pkg/stats"
)

// NoValidDetections is how an undefined Quantity is rendered.
const NoValidDetections = "no valid detections"

// ErrNoValidDetections is returned by Statistics.MeanDelay when no valid
// pair was found. It is a terminal value, not a failure of the analysis.
var ErrNoValidDetections = errors.New(NoValidDetections)

// Quantity is a ratio that is undefined when its denominator is zero.
type Quantity struct {
	Value   float64
	Defined bool
}

// Ratio returns num/den, undefined when den is zero.
func Ratio(num, den float64) Quantity {
	if den == 0 {
		return Quantity{}
	}

	return Quantity{Value: num / den, Defined: true}
}

// String formats the value with two decimals or the undefined sentinel.
func (q Quantity) String() string {
	if !q.Defined {
		return NoValidDetections
	}

	return strconv.FormatFloat(q.Value, 'f', 2, 64)
}

// MarshalJSON encodes an undefined quantity as null.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Defined {
		return []byte("null"), nil
	}

	return json.Marshal(q.Value)
}

// UnmarshalJSON accepts a number or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*q = Quantity{}

		return nil
	}

	var v float64

	err := json.Unmarshal(data, &v)
	if err != nil {
		return fmt.Errorf("decode quantity: %w", err)
	}

	*q = Quantity{Value: v, Defined: true}

	return nil
}

// MarshalYAML encodes an undefined quantity as null.
func (q Quantity) MarshalYAML() (any, error) {
	if !q.Defined {
		return nil, nil //nolint:nilnil // null is the YAML encoding of an undefined quantity.
	}

	return q.Value, nil
}

// SpacingMode selects the denominator of the average change spacing.
type SpacingMode string

// Spacing modes.
const (
	// SpacingLiteral divides the summed consecutive-change deltas by the
	// global change count. It understates the spacing by one term per signal
	// and is kept as the default for comparability with historic results.
	SpacingLiteral SpacingMode = "literal"
	// SpacingCorrected divides by the number of deltas actually summed.
	SpacingCorrected SpacingMode = "corrected"
)

// Valid reports whether m is a known mode.
func (m SpacingMode) Valid() bool {
	return m == SpacingLiteral || m == SpacingCorrected
}

// DefaultOutlierThreshold is the delay above which a signal is reported as an
// outlier.
const DefaultOutlierThreshold int64 = 50

// Outlier is a signal whose largest valid-pair delay exceeds the threshold.
type Outlier struct {
	Signal   int64 `json:"signal" yaml:"signal"`
	MaxDelay int64 `json:"max_delay" yaml:"max_delay"`
	// Position is the flow position of the pair's Change event.
	Position int         `json:"position" yaml:"position"`
	Event    event.Event `json:"event" yaml:"event"`
}

// SignalSummary is the per-signal breakdown of a run.
type SignalSummary struct {
	Signal     int64 `json:"signal" yaml:"signal"`
	Events     int   `json:"events" yaml:"events"`
	Changes    int   `json:"changes" yaml:"changes"`
	Detects    int   `json:"detects" yaml:"detects"`
	ValidPairs int   `json:"valid_pairs" yaml:"valid_pairs"`
	Anomalies  int   `json:"anomalies" yaml:"anomalies"`
	TotalDelay int64 `json:"total_delay" yaml:"total_delay"`
	MaxDelay   int64 `json:"max_delay" yaml:"max_delay"`
}

// Statistics is the result of one analysis run.
type Statistics struct {
	Signals          int      `json:"signals" yaml:"signals"`
	TotalEvents      int      `json:"total_events" yaml:"total_events"`
	ChangeCount      int      `json:"change_count" yaml:"change_count"`
	DetectCount      int      `json:"detect_count" yaml:"detect_count"`
	ValidPairs       int      `json:"valid_pairs" yaml:"valid_pairs"`
	TotalDelay       int64    `json:"total_delay" yaml:"total_delay"`
	AverageDelay     Quantity `json:"average_delay" yaml:"average_delay"`
	ErrorCount       int      `json:"error_count" yaml:"error_count"`
	ErrorPercentage  Quantity `json:"error_percentage" yaml:"error_percentage"`
	AvgChangeSpacing Quantity `json:"avg_change_spacing" yaml:"avg_change_spacing"`

	SpacingMode      SpacingMode `json:"spacing_mode" yaml:"spacing_mode"`
	OutlierThreshold int64       `json:"outlier_threshold" yaml:"outlier_threshold"`
	Outliers         []Outlier   `json:"outliers" yaml:"outliers"`

	Delays     stats.Summary   `json:"delays" yaml:"delays"`
	PerSignal  []SignalSummary `json:"per_signal" yaml:"per_signal"`
	Sanitized  int             `json:"sanitized" yaml:"sanitized"`
	Mismatches []Mismatch      `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
}

// MeanDelay returns the average detection delay, or ErrNoValidDetections.
func (s *Statistics) MeanDelay() (float64, error) {
	if !s.AverageDelay.Defined {
		return 0, ErrNoValidDetections
	}

	return s.AverageDelay.Value, nil
}
