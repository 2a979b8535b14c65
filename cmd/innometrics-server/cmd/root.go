package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/innometrics/innometrics-backend/internal/service/server"
	"github.com/innometrics/innometrics-backend/internal/version"
)

var (
	// configPath to the server settings YAML file.
	configPath string
	// root is the installation root override.
	root string
	// healthAddress overrides the gRPC health address.
	healthAddress string

	// rootCmd represents the base command for running the API server.
	rootCmd = &cobra.Command{
		Use:   "innometrics-server [listen-address]",
		Short: "Serve the Innometrics HTTP API.",
		Long: `Serves the Innometrics HTTP API together with a gRPC health service.

Settings are read from innometrics-settings.yaml in the installation root, which
is taken from INNOMETRICS_PATH when --root is not given. The secret key can be
provided through INNOMETRICS_SECRET_KEY instead. The listen address can be given
as an argument to override the settings (e.g., :5000, 0.0.0.0:8080).`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				Root:          root,
				ListenAddress: listenAddress,
				HealthAddress: healthAddress,
			})
		},
	}
)

// Execute runs the innometrics-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to settings file (defaults to the installation root)")
	rootCmd.Flags().StringVarP(&root, "root", "r", "", "installation root (defaults to $INNOMETRICS_PATH)")
	rootCmd.Flags().StringVar(&healthAddress, "health-address", "", "gRPC health listen address override")
}
