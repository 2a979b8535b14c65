package bootstrap

import (
	"context"
	"fmt"

	"github.com/innometrics/innometrics-backend/internal/config"
	domain "github.com/innometrics/innometrics-backend/internal/domain/bootstrap"
	"github.com/innometrics/innometrics-backend/internal/logger"
)

// Options are inputs accepted by the bootstrap entry points.
type Options struct {
	// ConfigPath is the optional path to the bootstrap YAML file.
	ConfigPath string
}

// Build loads the configuration and runs the BUILDING phase.
func Build(ctx context.Context, opts *Options) error {
	sequencer, err := load(opts)
	if err != nil {
		return err
	}

	record, err := sequencer.Build(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Build completed",
		"work_dir", record.Layout.Root, "files", record.Files, "toolchain", record.Toolchain)

	return nil
}

// Run loads the configuration and runs the RUNNING phase. A non-zero exit of
// the entry point is reported as *ExitError.
func Run(ctx context.Context, opts *Options) error {
	sequencer, err := load(opts)
	if err != nil {
		return err
	}

	return sequencer.Run(ctx)
}

// Environment returns the variables Run adds to the inherited environment.
func Environment(ctx context.Context, opts *Options) (map[string]string, error) {
	sequencer, err := load(opts)
	if err != nil {
		return nil, err
	}

	return sequencer.Environment(ctx)
}

func load(opts *Options) (*Sequencer, error) {
	cfg, err := config.LoadBootstrap(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return New(cfg), nil
}

// layoutOf derives the environment layout from the configuration.
func layoutOf(cfg *config.Bootstrap) domain.Layout {
	return domain.Layout{
		Root:               cfg.WorkDir,
		RootVariable:       cfg.RootVariable,
		SearchPathVariable: cfg.SearchPathVariable,
		SearchPathSubdirs:  append([]string(nil), cfg.SearchPathSubdirs...),
	}
}
