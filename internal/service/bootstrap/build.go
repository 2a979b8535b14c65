package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/innometrics/innometrics-backend/internal/config"
	domain "github.com/innometrics/innometrics-backend/internal/domain/bootstrap"
	"github.com/innometrics/innometrics-backend/internal/logger"
	"github.com/innometrics/innometrics-backend/internal/manifest"
)

var errNotDirectory = errors.New("not a directory")

// build holds the mutable state of a single BUILDING phase.
type build struct {
	cfg          *config.Bootstrap
	sequencer    *Sequencer
	workDirMade  bool
	materialized *materializer
	manifest     *manifest.Manifest
	checksum     string
}

// Build runs the BUILDING phase. On success the returned record has been
// persisted; on failure the installation is rolled back and no record exists.
func (s *Sequencer) Build(ctx context.Context) (*domain.Record, error) {
	ctx = logger.WithKV(logger.WithName(ctx, "bootstrap"), "phase", domain.PhaseBuilding)

	release, err := acquireLock(ctx, s.cfg.LockFile)
	if err != nil {
		return nil, err
	}

	defer release()

	b := &build{
		cfg:       s.cfg,
		sequencer: s,
	}

	record, err := b.run(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Build failed, rolling back", "error", err)
		b.rollback(ctx)

		return nil, err
	}

	b.materialized.discard()

	return record, nil
}

// run executes the steps in their fixed order.
func (b *build) run(ctx context.Context) (*domain.Record, error) {
	// A previous record must not survive a failed rebuild.
	if err := b.sequencer.records.Delete(ctx); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Establishing working directory", "step", 1, "work_dir", b.cfg.WorkDir)

	if err := b.establishWorkDir(); err != nil {
		return nil, fmt.Errorf("establish working directory: %w", err)
	}

	logger.InfoKV(ctx, "Materializing source tree", "step", 2, "source_dir", b.cfg.SourceDir)

	if err := b.materialize(ctx); err != nil {
		return nil, fmt.Errorf("materialize source tree: %w", err)
	}

	logger.InfoKV(ctx, "Installing packaging toolchain", "step", 3, "toolchain", b.cfg.Toolchain.Pin())

	if err := b.installToolchain(ctx); err != nil {
		return nil, fmt.Errorf("install toolchain: %w", err)
	}

	logger.InfoKV(ctx, "Installing dependency manifest", "step", 4, "manifest", b.cfg.Manifest)

	if err := b.installManifest(ctx); err != nil {
		return nil, fmt.Errorf("install manifest: %w", err)
	}

	record := &domain.Record{
		Layout:           layoutOf(b.cfg),
		Interpreter:      b.cfg.Interpreter,
		EntryPoint:       b.cfg.EntryPoint,
		Toolchain:        b.cfg.Toolchain.Pin(),
		Manifest:         b.cfg.Manifest,
		ManifestChecksum: b.checksum,
		Requirements:     b.manifest.Lines(),
		Files:            b.materialized.count(),
		BuiltAt:          time.Now().UTC(),
	}

	if err := b.sequencer.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save build record: %w", err)
	}

	return record, nil
}

func (b *build) establishWorkDir() error {
	info, err := os.Stat(b.cfg.WorkDir)

	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s: %w", b.cfg.WorkDir, errNotDirectory)
	case err == nil:
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	if err = os.MkdirAll(b.cfg.WorkDir, config.DefaultDirPermissions); err != nil {
		return err
	}

	b.workDirMade = true

	return nil
}

func (b *build) materialize(ctx context.Context) error {
	m, err := newMaterializer(b.cfg.SourceDir, b.cfg.WorkDir, b.cfg.Ignore, b.cfg.LockFile)
	if err != nil {
		return err
	}

	b.materialized = m

	if err = m.copyTree(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Source tree materialized", "files", m.count())

	return nil
}

func (b *build) installToolchain(ctx context.Context) error {
	return b.install(ctx, b.cfg.Toolchain.Pin())
}

// installManifest validates the manifest before handing it to the installer.
func (b *build) installManifest(ctx context.Context) error {
	path := b.cfg.ManifestPath()

	parsed, err := manifest.Parse(path)
	if err != nil {
		return err
	}

	b.manifest = parsed

	if b.checksum, err = fileChecksum(path); err != nil {
		return err
	}

	args, err := parsed.InstallArgs()
	if errors.Is(err, manifest.ErrNothingToInstall) {
		logger.Info(ctx, "The manifest lists no dependencies")

		return nil
	}

	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Manifest validated", "requirements", len(parsed.Requirements), "kind", parsed.Kind)

	return b.install(ctx, args...)
}

// install runs `<installer...> install <install_args...> <args...>` in the work directory.
func (b *build) install(ctx context.Context, args ...string) error {
	toolchain := b.cfg.Toolchain

	commandArgs := make([]string, 0, len(toolchain.Installer)+len(toolchain.InstallArgs)+len(args))
	commandArgs = append(commandArgs, toolchain.Installer[1:]...)
	commandArgs = append(commandArgs, "install")
	commandArgs = append(commandArgs, toolchain.InstallArgs...)
	commandArgs = append(commandArgs, args...)

	command := &Command{
		Dir:  b.cfg.WorkDir,
		Env:  b.sequencer.environ,
		Name: toolchain.Installer[0],
		Args: commandArgs,
	}

	logger.DebugKV(ctx, "Running installer", "command", command.String())

	return b.sequencer.executor.Execute(ctx, command)
}

// rollback undoes whatever the failed build left behind.
func (b *build) rollback(ctx context.Context) {
	if err := b.sequencer.records.Delete(ctx); err != nil {
		logger.WarnKV(ctx, "Unable to remove build record", "error", err)
	}

	if b.workDirMade {
		if err := os.RemoveAll(b.cfg.WorkDir); err != nil {
			logger.WarnKV(ctx, "Unable to remove working directory", "work_dir", b.cfg.WorkDir, "error", err)
		}

		return
	}

	if b.materialized == nil {
		return
	}

	if err := b.materialized.undo(); err != nil {
		logger.WarnKV(ctx, "Unable to restore working directory", "work_dir", b.cfg.WorkDir, "error", err)

		return
	}

	logger.InfoKV(ctx, "Materialized files removed", "work_dir", filepath.Clean(b.cfg.WorkDir))
}
