// Package commands implements the pacelog subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/pacelog/pkg/analysis"
	"github.com/Sumatoshi-tech/pacelog/pkg/config"
	"github.com/Sumatoshi-tech/pacelog/pkg/diagnostics"
	"github.com/Sumatoshi-tech/pacelog/pkg/observability"
	"github.com/Sumatoshi-tech/pacelog/pkg/version"
)

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// Bind registers the persistent flags.
func (g *GlobalOptions) Bind(flags *pflag.FlagSet) {
	flags.StringVarP(&g.ConfigPath, "config", "c", "", "Config file (default: ./pacelog.yaml if present)")
	flags.BoolVarP(&g.Verbose, "verbose", "v", false, "Verbose (debug) logging")
	flags.BoolVarP(&g.Quiet, "quiet", "q", false, "Only log errors")
}

// LoadConfig loads the configuration file and environment.
func (g *GlobalOptions) LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func (g *GlobalOptions) logLevel(cfg *config.Config) (slog.Level, error) {
	switch {
	case g.Quiet:
		return slog.LevelError, nil
	case g.Verbose:
		return slog.LevelDebug, nil
	default:
		return config.ParseLevel(cfg.Logging.Level)
	}
}

func (g *GlobalOptions) initObservability(cfg *config.Config, logOut io.Writer) (observability.Providers, error) {
	level, err := g.logLevel(cfg)
	if err != nil {
		return observability.Providers{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == "json"

	providers, err := observability.InitWithWriter(obsCfg, logOut)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}

func shutdownObservability(providers observability.Providers) error {
	err := providers.Shutdown(context.Background())
	if err != nil {
		return fmt.Errorf("shutdown observability: %w", err)
	}

	return nil
}

// diagnosticSink is an analysis.Sink with a completion check.
type diagnosticSink struct {
	analysis.Sink

	writer *diagnostics.WriterSink
	closer io.Closer
}

// Finish closes any diagnostics file and reports deferred write errors.
func (d *diagnosticSink) Finish() error {
	var errs []error

	if d.writer != nil {
		errs = append(errs, d.writer.Err())
	}

	if d.closer != nil {
		closeErr := d.closer.Close()
		if closeErr != nil {
			errs = append(errs, fmt.Errorf("close diagnostics: %w", closeErr))
		}
	}

	return errors.Join(errs...)
}

// newDiagnosticSink resolves diagnostics.output into a sink. A nil Sink
// means diagnostics are disabled.
func newDiagnosticSink(cfg config.DiagnosticsConfig, logger *slog.Logger, stdout, stderr io.Writer) (*diagnosticSink, error) {
	if !cfg.Enabled {
		return &diagnosticSink{}, nil
	}

	switch cfg.Output {
	case config.OutputLog:
		return &diagnosticSink{Sink: diagnostics.NewLogSink(logger)}, nil
	case config.OutputStdout:
		ws := diagnostics.NewWriterSink(stdout)

		return &diagnosticSink{Sink: ws, writer: ws}, nil
	case config.OutputStderr:
		ws := diagnostics.NewWriterSink(stderr)

		return &diagnosticSink{Sink: ws, writer: ws}, nil
	default:
		file, err := os.Create(cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("create diagnostics file: %w", err)
		}

		ws := diagnostics.NewWriterSink(file)

		return &diagnosticSink{Sink: ws, writer: ws, closer: file}, nil
	}
}
