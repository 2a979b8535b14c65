package cmd

import (
	"github.com/spf13/cobra"

	"github.com/innometrics/innometrics-backend/internal/service/bootstrap"
)

// runCmd runs the RUNNING phase.
//
//nolint:gochecknoglobals // Cobra commands are package-level by convention.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch the entry point of the last build.",
	Long: `Starts the entry point in the working directory with the installation root and
module search path exported. SIGINT and SIGTERM are forwarded to it as SIGTERM.
Exits with the entry point's status, 127 when it is missing and 126 when it
cannot be started.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		return bootstrap.Run(ctx, &bootstrap.Options{ConfigPath: configPath})
	},
}
