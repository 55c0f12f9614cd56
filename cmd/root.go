// Package cmd defines and implements the CLI commands for the tabfetch
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabfetch",
		Short: "A bounded-concurrency CSV fetch-and-parse pipeline.",
		Long: `tabfetch drains a queue of CSV URLs through a fixed pool of workers
sharing one pooled HTTP client, parses each payload into a record set,
and reports per-item timing plus a whole-run summary.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML; defaults + env vars are used when omitted)")

	cmd.AddCommand(newRunCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
