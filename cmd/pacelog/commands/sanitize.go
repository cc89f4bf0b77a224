package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pacelog/pkg/event"
	"github.com/Sumatoshi-tech/pacelog/pkg/flow"
)

// ErrOddSanitizedLog is returned when the cleaned log would have an odd number
// of lines: parsing it again would drop its last event.
var ErrOddSanitizedLog = errors.New("sanitized log has an odd number of lines")

// SanitizeCommand holds the flags for the sanitize command.
type SanitizeCommand struct {
	global *GlobalOptions

	output        string
	noDiagnostics bool
	force         bool
}

// NewSanitizeCommand creates and configures the sanitize command.
func NewSanitizeCommand(global *GlobalOptions) *cobra.Command {
	sc := &SanitizeCommand{global: global}

	cobraCmd := &cobra.Command{
		Use:   "sanitize <log>",
		Short: "Drop duplicate same-kind events and write a cleaned log",
		Long: `Sanitize removes, per signal, every event that is immediately followed by an
event of the same kind, keeping the later one. This is a heuristic: it assumes
the duplicate is the spurious record. The cleaned log keeps the original line
order; a dangling last line of an odd-length log is not carried over.

Logs are read in pairs of lines, so a cleaned log with an odd number of lines
would lose its last event when analyzed again. Such output is refused unless
--force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: sc.Run,
	}

	cobraCmd.Flags().StringVarP(&sc.output, "output", "o", "", "Cleaned log file (default: stdout)")
	cobraCmd.Flags().BoolVar(&sc.noDiagnostics, "no-diagnostics", false, "Do not report removed events")
	cobraCmd.Flags().BoolVar(&sc.force, "force", false,
		"Write the cleaned log even when its last line would be dropped on the next read")

	return cobraCmd
}

// Run executes the sanitize command.
func (sc *SanitizeCommand) Run(cmd *cobra.Command, args []string) (err error) {
	cfg, err := sc.global.LoadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("no-diagnostics") {
		cfg.Diagnostics.Enabled = !sc.noDiagnostics
	}

	providers, err := sc.global.initObservability(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, shutdownObservability(providers))
	}()

	events, err := readEvents(cmd, args[0])
	if err != nil {
		return err
	}

	_, removals := flow.SanitizeSet(flow.Group(events))
	cleaned := flow.FilterEvents(events, removals)

	sink, err := newDiagnosticSink(cfg.Diagnostics, providers.Logger, cmd.ErrOrStderr(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, sink.Finish())
	}()

	if sink.Sink != nil {
		for _, r := range removals {
			sink.Removal(r)
		}
	}

	ctx := contextOf(cmd)

	providers.Logger.InfoContext(ctx, "sanitized log",
		"path", args[0], "events", len(events), "removed", len(removals))

	if len(cleaned)%2 != 0 {
		if !sc.force {
			return fmt.Errorf("%w: %d events remain after removing %d; analyze with --sanitize instead",
				ErrOddSanitizedLog, len(cleaned), len(removals))
		}

		providers.Logger.WarnContext(ctx, "cleaned log has an odd number of lines; its last event is dropped when read again",
			"events", len(cleaned), "dropped", cleaned[len(cleaned)-1].String())
	}

	write := func(w io.Writer) error {
		return event.Format(w, cleaned)
	}

	if sc.output == "" {
		return write(cmd.OutOrStdout())
	}

	return writeAtomic(sc.output, write)
}

func readEvents(cmd *cobra.Command, path string) (events []event.Event, err error) {
	src, err := openLog(cmd, path)
	if err != nil {
		return nil, err
	}

	defer func() {
		err = errors.Join(err, src.Close())
	}()

	events, err = event.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return events, nil
}
