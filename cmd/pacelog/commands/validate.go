package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pacelog/pkg/logsource"
	"github.com/Sumatoshi-tech/pacelog/pkg/report"
)

// ErrInvalidReports is returned when at least one report fails validation.
var ErrInvalidReports = errors.New("report validation failed")

// ValidateCommand holds the flags for the validate command.
type ValidateCommand struct {
	noColor bool
}

// NewValidateCommand creates and configures the validate command.
func NewValidateCommand() *cobra.Command {
	vc := &ValidateCommand{}

	cobraCmd := &cobra.Command{
		Use:   "validate <report.json ...>",
		Short: "Validate JSON reports against the report schema",
		Args:  cobra.MinimumNArgs(1),
		RunE:  vc.Run,
	}

	cobraCmd.Flags().BoolVar(&vc.noColor, "no-color", false, "Disable colored output")

	return cobraCmd
}

// Run executes the validate command.
func (vc *ValidateCommand) Run(cmd *cobra.Command, args []string) error {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	if vc.noColor {
		ok.DisableColor()
		bad.DisableColor()
	}

	out := cmd.OutOrStdout()
	failed := 0

	for _, path := range args {
		err := validateReport(cmd, path)
		if err != nil {
			failed++

			bad.Fprintf(out, "INVALID %s\n", path)

			var schemaErr *report.SchemaError
			if errors.As(err, &schemaErr) {
				for _, v := range schemaErr.Violations {
					bad.Fprintf(out, "  - %s\n", v)
				}
			} else {
				bad.Fprintf(out, "  - %v\n", err)
			}

			continue
		}

		ok.Fprintf(out, "OK %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidReports, failed, len(args))
	}

	return nil
}

func validateReport(cmd *cobra.Command, path string) (err error) {
	var r io.Reader

	if path == logsource.Stdin {
		r = cmd.InOrStdin()
	} else {
		src, openErr := logsource.Open(path)
		if openErr != nil {
			return openErr
		}

		defer func() {
			err = errors.Join(err, src.Close())
		}()

		r = src
	}

	_, err = report.ReadJSON(r)

	return err
}
