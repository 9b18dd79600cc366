package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/m2t/pkg/version"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the m2t CLI.
// It wires up logging and the version and convert subcommands. The root also
// answers --version / -v with the same line as `m2t version`.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "m2t",
		Short:   "Convert microscopy data to 8-bit TIFF",
		Long:    "m2t: Batch-convert microscopy files to 8-bit TIFF with robust percentile normalization",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd)
		},
		SilenceUsage: true,
	}

	cmd.SetVersionTemplate(version.CLIString("{{.Version}}") + "\n")
	cmd.Flags().BoolP("version", "v", false, "Print the current version.")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.AddCommand(NewVersionCmd(ver), NewConvertCmd())

	return cmd
}

const rootCmdExample = `  # Convert a single file to sample.tif in the current directory
  m2t convert data/sample.npy

  # Convert several files, continuing past unreadable ones
  m2t convert --keep-going run1/*.tif

  # Plain progress output (for logs and CI)
  m2t convert --plain stack.npy

  # Print the version
  m2t --version`

// NewVersionCmd creates the "version" subcommand.
func NewVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIString(ver))
		},
	}
}
