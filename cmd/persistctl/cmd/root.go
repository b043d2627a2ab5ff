// Package cmd implements the persistctl commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stssoft/persist/logging"
)

// NewRootCmd builds the persistctl command tree.
func NewRootCmd() *cobra.Command {
	var (
		verbose   bool
		logFormat string
	)

	root := &cobra.Command{
		Use:   "persistctl",
		Short: "Inspect persist column blocks and stores",
		Long: `persistctl reads the files written by the persist column and store
packages: it lists column directories, verifies checksums and decodes every
column to prove a block is readable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logFormat != "text" && logFormat != "json" {
				return fmt.Errorf("unknown log format %q (want text or json)", logFormat)
			}

			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug records to stderr")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "format of -v log records: text or json")

	logger := func() *logging.Logger {
		if !verbose {
			return logging.NoopLogger()
		}

		if logFormat == "json" {
			return logging.NewJSONLogger(slog.LevelDebug)
		}

		return logging.NewTextLogger(slog.LevelDebug)
	}

	root.AddCommand(
		newInspectCmd(logger),
		newVerifyCmd(logger),
		newTablesCmd(logger),
		newIndexCmd(logger),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
