package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/pacelog/pkg/analysis"
)

const percentSuffix = "%"

type palette struct {
	title *color.Color
	good  *color.Color
	warn  *color.Color
	bad   *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		title: color.New(color.Bold),
		good:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed),
	}

	if noColor {
		for _, c := range []*color.Color{p.title, p.good, p.warn, p.bad} {
			c.DisableColor()
		}
	}

	return p
}

// WriteText renders a human-readable report: headline metrics, the delay
// distribution, and tables of signals, outliers and count mismatches.
func WriteText(w io.Writer, st *analysis.Statistics, opts Options) error {
	p := newPalette(opts.NoColor)

	var sb strings.Builder

	title := "=== PACELOG ==="
	if opts.Source != "" {
		title = fmt.Sprintf("=== PACELOG: %s ===", opts.Source)
	}

	sb.WriteString(p.title.Sprint(title))
	sb.WriteString("\n")

	writeHeadline(&sb, st, p)

	if st.Delays.Count > 0 {
		sb.WriteString("\n")
		sb.WriteString(delayTable(st))
		sb.WriteString("\n")
	}

	if len(st.PerSignal) > 0 {
		sb.WriteString("\nSignals:\n")
		sb.WriteString(signalTable(st))
		sb.WriteString("\n")
	}

	if len(st.Outliers) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.warn.Sprintf("Outliers (max delay > %d):", st.OutlierThreshold))
		sb.WriteString("\n")
		sb.WriteString(outlierTable(st))
		sb.WriteString("\n")
	}

	if len(st.Mismatches) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.bad.Sprint("Unbalanced signals:"))
		sb.WriteString("\n")
		sb.WriteString(mismatchTable(st))
		sb.WriteString("\n")
	}

	return writeString(w, sb.String())
}

func writeHeadline(sb *strings.Builder, st *analysis.Statistics, p palette) {
	line := func(label, value string) {
		fmt.Fprintf(sb, "%-20s %s\n", label+":", value)
	}

	line("Signals", humanize.Comma(int64(st.Signals)))
	line("Events", humanize.Comma(int64(st.TotalEvents)))
	line("Changes", humanize.Comma(int64(st.ChangeCount)))
	line("Detections", humanize.Comma(int64(st.DetectCount)))
	line("Valid pairs", humanize.Comma(int64(st.ValidPairs)))
	line("Total delay", humanize.Comma(st.TotalDelay))

	avg := st.AverageDelay.String()
	if st.AverageDelay.Defined {
		line("Average delay", p.good.Sprint(avg))
	} else {
		line("Average delay", p.warn.Sprint(avg))
	}

	errText := humanize.Comma(int64(st.ErrorCount))
	if st.ErrorPercentage.Defined {
		errText += " (" + st.ErrorPercentage.String() + percentSuffix + ")"
	}

	if st.ErrorCount > 0 {
		line("Errors", p.bad.Sprint(errText))
	} else {
		line("Errors", p.good.Sprint(errText))
	}

	line("Avg change spacing", fmt.Sprintf("%s (%s)", st.AvgChangeSpacing, st.SpacingMode))

	if st.Sanitized > 0 {
		line("Sanitized", humanize.Comma(int64(st.Sanitized)))
	}
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func delayTable(st *analysis.Statistics) string {
	d := st.Delays

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Pairs", "Min", "Median", "P95", "Max", "Mean"})
	tbl.AppendRow(table.Row{
		humanize.Comma(int64(d.Count)),
		d.Min,
		formatFloat(d.Median),
		formatFloat(d.P95),
		d.Max,
		formatFloat(d.Mean),
	})

	return "Delay distribution:\n" + tbl.Render()
}

func signalTable(st *analysis.Statistics) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Signal", "Events", "Changes", "Detects", "Pairs", "Anomalies", "Total delay", "Max delay"})

	for _, s := range st.PerSignal {
		tbl.AppendRow(table.Row{
			s.Signal, s.Events, s.Changes, s.Detects, s.ValidPairs, s.Anomalies,
			humanize.Comma(s.TotalDelay), s.MaxDelay,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d signals", len(st.PerSignal))})

	return tbl.Render()
}

func outlierTable(st *analysis.Statistics) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Signal", "Max delay", "Position", "Line", "Event"})

	for _, o := range st.Outliers {
		tbl.AppendRow(table.Row{o.Signal, o.MaxDelay, o.Position, o.Event.Line, o.Event.String()})
	}

	return tbl.Render()
}

func mismatchTable(st *analysis.Statistics) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Signal", "Changes", "Detects"})

	for _, m := range st.Mismatches {
		tbl.AppendRow(table.Row{m.Signal, m.Changes, m.Detects})
	}

	return tbl.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteCompact renders a single key=value line, suited to shell pipelines.
func WriteCompact(w io.Writer, st *analysis.Statistics, opts Options) error {
	fields := []string{
		"signals=" + strconv.Itoa(st.Signals),
		"events=" + strconv.Itoa(st.TotalEvents),
		"valid_pairs=" + strconv.Itoa(st.ValidPairs),
		"total_delay=" + strconv.FormatInt(st.TotalDelay, 10),
		"avg_delay=" + compactQuantity(st.AverageDelay),
		"errors=" + strconv.Itoa(st.ErrorCount),
		"error_pct=" + compactQuantity(st.ErrorPercentage),
		"avg_change_spacing=" + compactQuantity(st.AvgChangeSpacing),
		"outliers=" + strconv.Itoa(len(st.Outliers)),
	}

	if opts.Source != "" {
		fields = append([]string{"source=" + strconv.Quote(opts.Source)}, fields...)
	}

	return writeString(w, strings.Join(fields, " ")+"\n")
}

func compactQuantity(q analysis.Quantity) string {
	if !q.Defined {
		return "none"
	}

	return q.String()
}
