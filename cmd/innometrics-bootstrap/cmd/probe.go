package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/innometrics/innometrics-backend/internal/config"
	"github.com/innometrics/innometrics-backend/internal/service/probe"
)

//nolint:gochecknoglobals // Cobra flags and commands are package-level by convention.
var (
	probeAddress string
	probeService string
	probeTimeout time.Duration

	// probeCmd checks the health of a running innometrics-server.
	probeCmd = &cobra.Command{
		Use:   "probe [address]",
		Short: "Check the health of a running server.",
		Long: `Calls the gRPC health service of innometrics-server once and exits with a
non-zero status unless the server reports SERVING.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			address := probeAddress
			if len(args) > 0 {
				address = args[0]
			}

			return probe.Run(ctx, &probe.Options{
				Address: address,
				Service: probeService,
				Timeout: probeTimeout,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	probeCmd.Flags().StringVarP(&probeAddress, "address", "a", probe.DefaultAddress, "health service address")
	probeCmd.Flags().StringVarP(&probeService, "service", "s", "", "service name to check (empty checks the server)")
	probeCmd.Flags().DurationVarP(&probeTimeout, "timeout", "t", config.DefaultTimeout, "health call timeout")
}
