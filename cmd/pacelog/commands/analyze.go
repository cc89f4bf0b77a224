package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Sumatoshi-tech/pacelog/pkg/analysis"
	"github.com/Sumatoshi-tech/pacelog/pkg/config"
	"github.com/Sumatoshi-tech/pacelog/pkg/diagnostics"
	"github.com/Sumatoshi-tech/pacelog/pkg/logsource"
	"github.com/Sumatoshi-tech/pacelog/pkg/observability"
	"github.com/Sumatoshi-tech/pacelog/pkg/report"
	"github.com/Sumatoshi-tech/pacelog/pkg/safeconv"
)

// AnalyzeCommand holds the flags for the analyze command.
type AnalyzeCommand struct {
	global *GlobalOptions

	output            string
	format            string
	spacingMode       string
	diagnosticsOutput string
	metricsFile       string
	outlierThreshold  int64
	sanitize          bool
	strict            bool
	noDiagnostics     bool
	noColor           bool
}

// NewAnalyzeCommand creates and configures the analyze command.
func NewAnalyzeCommand(global *GlobalOptions) *cobra.Command {
	ac := &AnalyzeCommand{global: global}

	cobraCmd := &cobra.Command{
		Use:   "analyze [log ...]",
		Short: "Pair change/detection events and report latency statistics",
		Long: `Analyze reads one or more event logs ("-" for stdin, *.lz4 logs are decoded
transparently), pairs each Change with the Detect that follows it per signal,
and reports delays, anomalies and outlier signals.`,
		RunE: ac.Run,
	}

	flags := cobraCmd.Flags()
	flags.StringVarP(&ac.output, "output", "o", "", "Report file (default: stdout)")
	flags.StringVarP(&ac.format, "format", "f", string(report.FormatText), "Report format: text, compact, json or yaml")
	flags.BoolVar(&ac.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&ac.sanitize, "sanitize", config.DefaultSanitize, "Drop duplicate same-kind events before pairing")
	flags.BoolVar(&ac.strict, "strict", config.DefaultStrict, "Fail when a signal's change and detection counts differ")
	flags.Int64Var(&ac.outlierThreshold, "outlier-threshold", config.DefaultOutlierThreshold,
		"Report signals whose maximal delay exceeds this value")
	flags.StringVar(&ac.spacingMode, "spacing-mode", config.DefaultSpacingMode,
		"Average change spacing denominator: literal or corrected")
	flags.BoolVar(&ac.noDiagnostics, "no-diagnostics", false, "Suppress per-event diagnostics")
	flags.StringVar(&ac.diagnosticsOutput, "diagnostics-output", config.DefaultDiagnosticsOutput,
		"Diagnostics destination: stderr, stdout, log or a file path")
	flags.StringVar(&ac.metricsFile, "metrics-file", config.DefaultMetricsFile,
		"Write run metrics in Prometheus textfile format")

	return cobraCmd
}

// applyFlags overrides configuration values with explicitly set flags.
func (ac *AnalyzeCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("sanitize") {
		cfg.Analysis.Sanitize = ac.sanitize
	}

	if flags.Changed("strict") {
		cfg.Analysis.Strict = ac.strict
	}

	if flags.Changed("outlier-threshold") {
		cfg.Analysis.OutlierThreshold = ac.outlierThreshold
	}

	if flags.Changed("spacing-mode") {
		cfg.Analysis.SpacingMode = ac.spacingMode
	}

	if flags.Changed("no-diagnostics") {
		cfg.Diagnostics.Enabled = !ac.noDiagnostics
	}

	if flags.Changed("diagnostics-output") {
		cfg.Diagnostics.Output = ac.diagnosticsOutput
	}

	if flags.Changed("metrics-file") {
		cfg.Telemetry.MetricsFile = ac.metricsFile
	}

	err := config.Validate(cfg)
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	return nil
}

// Run executes the analyze command.
func (ac *AnalyzeCommand) Run(cmd *cobra.Command, args []string) (err error) {
	format, err := report.ParseFormat(ac.format)
	if err != nil {
		return err
	}

	cfg, err := ac.global.LoadConfig()
	if err != nil {
		return err
	}

	err = ac.applyFlags(cmd, cfg)
	if err != nil {
		return err
	}

	providers, err := ac.global.initObservability(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, shutdownObservability(providers))
	}()

	sink, err := newDiagnosticSink(cfg.Diagnostics, providers.Logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, sink.Finish())
	}()

	out, err := openOutput(cmd, ac.output)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, out.Close())
	}()

	counter := &diagnostics.Counter{}

	runSink := analysis.Sink(counter)
	if sink.Sink != nil {
		runSink = diagnostics.Tee{sink.Sink, counter}
	}

	analyzer := analysis.New(analysisOptions(cfg),
		analysis.WithSink(runSink),
		analysis.WithLogger(providers.Logger),
		analysis.WithTracer(providers.Tracer),
	)

	metrics, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{logsource.Stdin}
	}

	runs := make([]observability.RunStats, 0, len(paths))

	defer func() {
		if cfg.Telemetry.MetricsFile == "" {
			return
		}

		err = errors.Join(err, observability.WriteTextfile(contextOf(cmd), cfg.Telemetry.MetricsFile, runs...))
	}()

	renderOpts := report.Options{NoColor: ac.noColor}

	for _, path := range paths {
		ctx := contextOf(cmd)

		st, rs, runErr := analyzePath(ctx, cmd, analyzer, providers, path)
		metrics.RecordRun(ctx, rs)
		runs = append(runs, rs)

		if runErr != nil {
			return runErr
		}

		if len(paths) > 1 || path != logsource.Stdin {
			renderOpts.Source = path
		}

		err = report.Write(out, format, st, renderOpts)
		if err != nil {
			return err
		}
	}

	providers.Logger.InfoContext(contextOf(cmd), "analysis finished",
		"logs", len(paths),
		"anomalies", counter.Anomalies,
		"outliers", counter.Outliers,
		"removed_duplicates", counter.Removals,
	)

	return nil
}

func analysisOptions(cfg *config.Config) analysis.Options {
	return analysis.Options{
		Sanitize:         cfg.Analysis.Sanitize,
		Strict:           cfg.Analysis.Strict,
		OutlierThreshold: cfg.Analysis.OutlierThreshold,
		SpacingMode:      analysis.SpacingMode(cfg.Analysis.SpacingMode),
	}
}

func analyzePath(
	ctx context.Context,
	cmd *cobra.Command,
	analyzer *analysis.Analyzer,
	providers observability.Providers,
	path string,
) (st *analysis.Statistics, rs observability.RunStats, err error) {
	start := time.Now()

	ctx, span := providers.Tracer.Start(ctx, "pacelog.analyze")
	span.SetAttributes(attribute.String(observability.AttrLogPath, path))

	defer func() {
		rs.Duration = time.Since(start)

		if err != nil {
			rs.Failed = true

			span.RecordError(err)
			span.SetStatus(codes.Error, "analyze failed")
		}

		span.End()
	}()

	src, err := openLog(cmd, path)
	if err != nil {
		return nil, rs, err
	}

	defer func() {
		err = errors.Join(err, src.Close())
	}()

	attrs := []any{"path", src.Name, "compressed", src.Compressed}
	if src.Size >= 0 {
		attrs = append(attrs, "size", humanize.Bytes(safeconv.MustInt64ToUint64(src.Size)))
	}

	providers.Logger.InfoContext(ctx, "analyzing log", attrs...)

	st, err = analyzer.Analyze(ctx, src)
	if err != nil {
		return nil, rs, fmt.Errorf("%s: %w", path, err)
	}

	rs.Events = int64(st.TotalEvents)
	rs.ValidPairs = int64(st.ValidPairs)
	rs.Anomalies = int64(st.ErrorCount)
	rs.Outliers = int64(len(st.Outliers))
	rs.Sanitized = int64(st.Sanitized)
	rs.Mismatches = int64(len(st.Mismatches))

	providers.Logger.LogAttrs(ctx, slog.LevelDebug, "log analyzed",
		slog.String("path", path),
		slog.Int("signals", st.Signals),
		slog.Int("valid_pairs", st.ValidPairs),
		slog.Int("errors", st.ErrorCount),
	)

	return st, rs, nil
}

// openLog opens path, reading "-" from the command's input stream.
func openLog(cmd *cobra.Command, path string) (*logsource.Source, error) {
	if path == logsource.Stdin {
		src, err := logsource.NewReader(logsource.Stdin, cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("open stdin: %w", err)
		}

		return src, nil
	}

	return logsource.Open(path)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
