package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/innometrics/innometrics-backend/internal/service/bootstrap"
)

// envCmd prints the variables "run" exports.
//
//nolint:gochecknoglobals // Cobra commands are package-level by convention.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the environment variables the entry point receives.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		variables, err := bootstrap.Environment(cmd.Context(), &bootstrap.Options{ConfigPath: configPath})
		if err != nil {
			return err
		}

		names := make([]string, 0, len(variables))
		for name := range variables {
			names = append(names, name)
		}

		slices.Sort(names)

		for _, name := range names {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, variables[name])
		}

		return nil
	},
}
