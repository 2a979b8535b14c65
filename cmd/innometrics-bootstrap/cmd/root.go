package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/innometrics/innometrics-backend/internal/service/bootstrap"
	"github.com/innometrics/innometrics-backend/internal/version"
)

var (
	// configPath to the bootstrap configuration YAML file.
	configPath string

	// rootCmd represents the base command; the phases are subcommands.
	rootCmd = &cobra.Command{
		Use:   "innometrics-bootstrap",
		Short: "Build and launch the Innometrics backend.",
		Long: `Prepares the Innometrics backend for execution and launches it.

"build" copies the application source into the working directory, installs the
pinned toolchain and the dependency manifest, and records the result.
"run" starts the entry point from the recorded build with INNOMETRICS_PATH and
PYTHONPATH exported, and exits with the entry point's exit status.

Without a configuration file the defaults of the original container image are used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the innometrics-bootstrap CLI. The exit status of the entry
// point launched by "run" becomes the exit status of this process.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var exitErr *bootstrap.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "Error:", exitErr.Err)
		}

		os.Exit(exitErr.Code)
	}

	_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "path to bootstrap configuration file (defaults are used when empty)")

	rootCmd.AddCommand(buildCmd, runCmd, envCmd, probeCmd)
}
