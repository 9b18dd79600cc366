package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/m2t/internal/config"
	"github.com/rshade/m2t/internal/convert"
	"github.com/rshade/m2t/internal/dataset"
	"github.com/rshade/m2t/internal/logging"
	"github.com/rshade/m2t/internal/progress"
)

// printer formats sample counts with thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// convertParams holds the flag values of the convert command.
type convertParams struct {
	keepGoing  bool
	plain      bool
	blockSize  int
	maxSamples int
}

// NewConvertCmd creates the "convert" subcommand.
//
// Registered flags:
//   - --keep-going: attempt every file and report failures at the end
//   - --plain: line-oriented progress output even on a terminal
//   - --block-size: samples read per block (default from configuration)
//   - --max-samples: cap on samples used for percentiles, 0 for exact
func NewConvertCmd() *cobra.Command {
	var params convertParams

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert microscopy files to 8-bit TIFF",
		Long: `Convert each FILE to <stem>.tif in the current directory.

Intensities are clipped to the 2nd..98th percentile of each file, rescaled to
0..255 and truncated to 8 bits. Existing output files are overwritten.
Supported inputs: ` + strings.Join(dataset.SupportedExtensions(), ", ") + ".",
		Example: convertExample,
		Args:    validateInputs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeConvert(cmd, args, params)
		},
	}

	cmd.Flags().BoolVar(&params.keepGoing, "keep-going", false,
		"Continue with the remaining files when one fails, then report all failures")
	cmd.Flags().BoolVar(&params.plain, "plain", false, "Print one progress line per file instead of a live bar")
	cmd.Flags().IntVar(&params.blockSize, "block-size", config.DefaultBlockSize, "Samples read per block")
	cmd.Flags().IntVar(&params.maxSamples, "max-samples", 0,
		"Maximum samples used to compute percentiles (0 = all samples, exact)")

	return cmd
}

const convertExample = `  # Convert one file
  m2t convert sample.npy

  # Convert a batch; sample.tif, cells.tif and stack.tif are written here
  m2t convert data/sample.npy data/cells.png /scratch/stack.tif

  # Keep going past corrupt files
  m2t convert --keep-going raw/*.tif`

// validateInputs rejects an empty file list and paths that are not regular files.
func validateInputs(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("requires at least 1 file")
	}
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("invalid value for FILE: path %q does not exist", path)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("invalid value for FILE: path %q is not a file", path)
		}
	}
	return nil
}

// resolveConvertConfig merges flag overrides onto the configured defaults.
func resolveConvertConfig(cmd *cobra.Command, params convertParams) (config.ConvertConfig, error) {
	cc := config.GetConvertConfig()
	if cmd.Flags().Changed("block-size") {
		cc.BlockSize = params.blockSize
	}
	if cmd.Flags().Changed("max-samples") {
		cc.MaxSamples = params.maxSamples
	}
	if params.keepGoing {
		cc.FailurePolicy = config.FailurePolicyContinue
	}
	if err := cc.Validate(); err != nil {
		return cc, err
	}
	return cc, nil
}

// executeConvert runs the batch converter over args and prints a summary.
func executeConvert(cmd *cobra.Command, args []string, params convertParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	cc, err := resolveConvertConfig(cmd, params)
	if err != nil {
		return err
	}
	policy, err := convert.ParseFailurePolicy(cc.FailurePolicy)
	if err != nil {
		return err
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "cli").
		Int("files", len(args)).
		Int("block_size", cc.BlockSize).
		Int("max_samples", cc.MaxSamples).
		Stringer("policy", policy).
		Msg("starting conversion")

	conv := convert.New(convert.Options{
		BlockSize:  cc.BlockSize,
		MaxSamples: cc.MaxSamples,
		Policy:     policy,
		Compress:   cc.Compression == config.CompressionDeflate,
		Renderer:   progress.Select(cmd.OutOrStdout(), params.plain),
	})

	summary, err := conv.Convert(ctx, args)
	if policy == convert.Continue {
		printSummary(cmd, summary)
	}
	if err != nil {
		return err
	}

	log.Info().
		Ctx(ctx).
		Str("component", "cli").
		Int("converted", summary.Converted()).
		Dur("elapsed", summary.Elapsed).
		Msg("conversion finished")
	return nil
}

// printSummary reports how many files converted and lists the failures.
func printSummary(cmd *cobra.Command, summary convert.Summary) {
	_, _ = printer.Fprintf(cmd.OutOrStdout(), "Converted %d of %d files (%d samples)\n",
		summary.Converted(), summary.Total, summary.Samples())
	failed := summary.Failed()
	if len(failed) == 0 {
		return
	}
	cmd.PrintErrln("Failed:")
	for _, r := range failed {
		cmd.PrintErrf("  %s: %v\n", r.Task.Input, r.Err)
	}
}
