package report_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pacelog/pkg/analysis"
	"github.com/Sumatoshi-tech/pacelog/pkg/report"
)

const (
	pairedLog    = "C 1 10\nD 1 15\nC 1 20\nD 1 100\n"
	detectionLog = "D 1 5\nC 1 10\n"
)

func analyze(t *testing.T, log string) *analysis.Statistics {
	t.Helper()

	st, err := analysis.New(analysis.DefaultOptions()).Analyze(context.Background(), strings.NewReader(log))
	require.NoError(t, err)

	return st
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want report.Format
	}{
		{"text", report.FormatText},
		{"JSON", report.FormatJSON},
		{" yaml ", report.FormatYAML},
		{"compact", report.FormatCompact},
	}

	for _, tt := range tests {
		got, err := report.ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := report.ParseFormat("xml")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := report.WriteText(&buf, analyze(t, pairedLog), report.Options{Source: "run.log", NoColor: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "=== PACELOG: run.log ===")
	assert.Contains(t, out, "Average delay:       42.50")
	assert.Contains(t, out, "Errors:              0 (0.00%)")
	assert.Contains(t, out, "Avg change spacing:  5.00 (literal)")
	assert.Contains(t, out, "Delay distribution:")
	assert.Contains(t, out, "Outliers (max delay > 50):")
	assert.Contains(t, out, "C 1 20")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteText_NoValidDetections(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.WriteText(&buf, analyze(t, detectionLog), report.Options{NoColor: true}))

	out := buf.String()
	assert.Contains(t, out, "Average delay:       "+analysis.NoValidDetections)
	assert.Contains(t, out, "Errors:              2 (100.00%)")
	assert.NotContains(t, out, "Delay distribution:")
	assert.NotContains(t, out, "Outliers")
}

func TestWriteText_Mismatches(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.WriteText(&buf, analyze(t, "C 1 1\nC 1 2\n"), report.Options{NoColor: true}))

	assert.Contains(t, buf.String(), "Unbalanced signals:")
}

func TestWriteCompact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.WriteCompact(&buf, analyze(t, pairedLog), report.Options{}))

	assert.Equal(t,
		"signals=1 events=4 valid_pairs=2 total_delay=85 avg_delay=42.50 errors=0 "+
			"error_pct=0.00 avg_change_spacing=5.00 outliers=1\n",
		buf.String())
}

func TestWriteCompact_Undefined(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.WriteCompact(&buf, analyze(t, detectionLog), report.Options{Source: "a b"}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `source="a b" `))
	assert.Contains(t, out, "avg_delay=none")
}

func TestWriteJSON_ValidatesAndRoundTrips(t *testing.T) {
	t.Parallel()

	st := analyze(t, pairedLog)

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf, st))
	require.NoError(t, report.ValidateJSON(buf.Bytes()))

	back, err := report.ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, st.ValidPairs, back.ValidPairs)
	assert.Equal(t, st.AverageDelay, back.AverageDelay)
	require.Len(t, back.Outliers, 1)
	assert.Equal(t, st.Outliers[0].Event.Kind, back.Outliers[0].Event.Kind)
}

func TestWriteJSON_UndefinedIsNull(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf, analyze(t, detectionLog)))

	assert.Contains(t, buf.String(), `"average_delay": null`)
	require.NoError(t, report.ValidateJSON(buf.Bytes()))
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.WriteYAML(&buf, analyze(t, detectionLog)))

	out := buf.String()
	assert.Contains(t, out, "average_delay: null")
	assert.Contains(t, out, "spacing_mode: literal")
}

func TestWrite_Dispatch(t *testing.T) {
	t.Parallel()

	st := analyze(t, pairedLog)

	for _, f := range report.Formats() {
		var buf bytes.Buffer
		require.NoError(t, report.Write(&buf, f, st, report.Options{NoColor: true}), f)
		assert.NotEmpty(t, buf.String())
	}

	err := report.Write(&bytes.Buffer{}, report.Format("csv"), st, report.Options{})
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestValidateJSON_Rejects(t *testing.T) {
	t.Parallel()

	err := report.ValidateJSON([]byte(`{"signals": -1}`))
	require.ErrorIs(t, err, report.ErrInvalidReport)

	var schemaErr *report.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.NotEmpty(t, schemaErr.Violations)
}

func TestSchemaIsCopy(t *testing.T) {
	t.Parallel()

	s := report.Schema()
	require.NotEmpty(t, s)

	s[0] = 'x'
	assert.Equal(t, byte('{'), report.Schema()[0])
}
