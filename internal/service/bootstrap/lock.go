package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/innometrics/innometrics-backend/internal/logger"
)

// lockLifetime is the period after which a build lock is considered abandoned.
const lockLifetime = 30 * time.Minute

// errBuildInProgress is returned when another build holds the lock.
var errBuildInProgress = errors.New("another build is in progress")

// acquireLock creates the lock marker. The returned function removes it.
func acquireLock(ctx context.Context, path string) (func(), error) {
	if isBuildRunning(ctx, path) {
		return nil, fmt.Errorf("%s: %w", path, errBuildInProgress)
	}

	marker, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", path, errBuildInProgress)
		}

		return nil, fmt.Errorf("create build lock: %w", err)
	}

	_, err = marker.WriteString(strconv.Itoa(os.Getpid()))
	if closeErr := marker.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(path)

		return nil, fmt.Errorf("write build lock: %w", err)
	}

	return func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Unable to remove build lock", "path", path, "error", err)
		}
	}, nil
}

// isBuildRunning reports whether a lock marker is present and still owned.
// A marker older than lockLifetime is removed unless the process whose PID
// it holds is still running this program.
func isBuildRunning(ctx context.Context, path string) bool {
	fileInfo, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	if err != nil {
		logger.WarnKV(ctx, "Unable to read build lock", "path", path, "error", err)

		return false
	}

	if time.Since(fileInfo.ModTime()) <= lockLifetime {
		return true
	}

	logger.InfoKV(ctx, "The build lock is too old, checking its owner", "path", path)

	running, err := lockOwnerRunning(path, filepath.Base(os.Args[0]))
	if err != nil || running {
		return true
	}

	return os.Remove(path) != nil
}

// lockOwnerRunning reports whether the PID stored in the marker belongs to a
// live process, other than this one, that runs executable. Unrelated processes
// sharing the executable name, such as a long-running `run`, do not count.
func lockOwnerRunning(path, executable string) (bool, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return false, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 || pid == os.Getpid() {
		return false, nil //nolint:nilerr // An unreadable PID cannot own the lock.
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, err
	}

	return process != nil && sameExecutable(process.Executable(), executable), nil
}

// commLength is the longest process name Linux reports.
const commLength = 15

func sameExecutable(reported, executable string) bool {
	if reported == executable {
		return true
	}

	return len(reported) == commLength && strings.HasPrefix(executable, reported)
}
