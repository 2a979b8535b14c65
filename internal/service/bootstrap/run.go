package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	domain "github.com/innometrics/innometrics-backend/internal/domain/bootstrap"
	"github.com/innometrics/innometrics-backend/internal/logger"
	"github.com/innometrics/innometrics-backend/internal/repository/record"
)

const (
	// ExitCodeNotFound is reported when the entry point or its interpreter is missing.
	ExitCodeNotFound = 127
	// ExitCodeCannotRun is reported when the entry point exists but cannot be started.
	ExitCodeCannotRun = 126

	// stopGracePeriod is how long the entry point may take to exit after SIGTERM.
	stopGracePeriod = 10 * time.Second
	// signalExitBase is added to the signal number when the entry point is killed by a signal.
	signalExitBase = 128
)

var (
	// ErrNotBuilt is returned by Run when no build record exists.
	ErrNotBuilt = errors.New("no completed build found, run `innometrics-bootstrap build` first")
	// ErrEntryPointMissing is returned when the entry point is absent from the work directory.
	ErrEntryPointMissing = errors.New("entry point not found")
)

// ExitError carries the exit status of the RUNNING phase.
type ExitError struct {
	// Code is the process exit status to report.
	Code int
	// Err is the underlying cause when the entry point never ran.
	Err error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("entry point exited with status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Run runs the RUNNING phase: the entry point is started once with the
// recorded environment and its exit status is returned as *ExitError when
// non-zero. Canceling ctx forwards SIGTERM to the entry point.
func (s *Sequencer) Run(ctx context.Context) error {
	ctx = logger.WithKV(logger.WithName(ctx, "bootstrap"), "phase", domain.PhaseRunning)

	built, err := s.records.Load(ctx)
	if errors.Is(err, record.ErrNotFound) {
		return ErrNotBuilt
	}

	if err != nil {
		return err
	}

	root := built.Layout.Root
	entryPoint := filepath.Join(root, filepath.FromSlash(built.EntryPoint))

	if _, err = os.Stat(entryPoint); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ExitError{Code: ExitCodeNotFound, Err: fmt.Errorf("%s: %w", entryPoint, ErrEntryPointMissing)}
		}

		return &ExitError{Code: ExitCodeCannotRun, Err: err}
	}

	name, args := entryPoint, []string(nil)
	if built.Interpreter != "" {
		name, args = built.Interpreter, []string{entryPoint}
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = root
	cmd.Env = built.Layout.Environ(s.environ)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = s.stdin, s.stdout, s.stderr
	cmd.Cancel = func() error {
		logger.Info(ctx, "Forwarding termination to the entry point")

		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = stopGracePeriod

	logger.InfoKV(ctx, "Starting entry point", "command", cmd.String(), "work_dir", root)

	runErr := cmd.Run()
	if cmd.ProcessState == nil {
		return startError(runErr)
	}

	code := exitCode(cmd.ProcessState)
	logger.InfoKV(ctx, "Entry point exited", "exit_code", code)

	if code == 0 {
		return nil
	}

	return &ExitError{Code: code}
}

// exitCode maps a finished process to a shell-style exit status.
func exitCode(state *os.ProcessState) int {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return signalExitBase + int(status.Signal())
	}

	if code := state.ExitCode(); code >= 0 {
		return code
	}

	return 1
}

// startError classifies an entry point that could not be started.
func startError(err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return &ExitError{Code: ExitCodeNotFound, Err: err}
	}

	return &ExitError{Code: ExitCodeCannotRun, Err: err}
}
