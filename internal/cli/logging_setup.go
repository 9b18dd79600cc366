package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/m2t/internal/config"
	"github.com/rshade/m2t/internal/logging"
	"github.com/rshade/m2t/pkg/version"
)

// logResult tracks the log file opened by setupLogging so it can be closed.
var logResult *logging.LogPathResult //nolint:gochecknoglobals // One logger per process invocation.

// setupLogging configures logging based on config file, environment, and CLI flags,
// and stores the logger and a fresh run ID in the command context.
func setupLogging(cmd *cobra.Command) {
	loggingCfg := config.GetLoggingConfig()

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	if loggingCfg.File != "" {
		if err := config.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	result := logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())
	logResult = &result
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	runID := logging.GetOrGenerateRunID(ctx)
	ctx = logging.ContextWithRunID(ctx, runID)
	ctx = result.Logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().
		Ctx(ctx).
		Str("command", cmd.Name()).
		Str("run_id", runID).
		Str("version", version.GetVersion()).
		Str("commit", version.GetGitCommit()).
		Msg("command started")
}

// cleanupLogging closes the log file handle.
func cleanupLogging(_ *cobra.Command) error {
	if logResult == nil {
		return nil
	}
	err := logResult.Close()
	logResult = nil
	return err
}
