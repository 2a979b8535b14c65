package cmd

import (
	"github.com/spf13/cobra"

	"github.com/innometrics/innometrics-backend/internal/service/bootstrap"
)

// buildCmd runs the BUILDING phase.
//
//nolint:gochecknoglobals // Cobra commands are package-level by convention.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Materialize the source tree and install dependencies.",
	Long: `Creates the working directory, copies the source tree into it, installs the
pinned toolchain and then the dependency manifest. On failure everything the
build created is removed and no build record is written.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		return bootstrap.Build(ctx, &bootstrap.Options{ConfigPath: configPath})
	},
}
