// Package main provides the entry point for the pacelog CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pacelog/cmd/pacelog/commands"
	"github.com/Sumatoshi-tech/pacelog/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	global := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "pacelog",
		Short: "pacelog - change/detection latency analysis",
		Long: `pacelog reconciles change and detection events logged by an instrumented
change detector and reports detection latency and error statistics.

Commands:
  analyze   Pair events and report statistics
  sanitize  Drop duplicate events and write a cleaned log
  validate  Check persisted JSON reports against the report schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	global.Bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(commands.NewAnalyzeCommand(global))
	rootCmd.AddCommand(commands.NewSanitizeCommand(global))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pacelog %s\n", version.String())
		},
	}
}
