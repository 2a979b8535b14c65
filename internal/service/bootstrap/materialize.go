package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/innometrics/innometrics-backend/internal/logger"
)

var errSourceIsWorkDir = errors.New("source directory is the work directory")

// backupPrefix names the directory that holds overwritten files until the build ends.
const backupPrefix = ".innometrics-rollback-"

// materializer copies the build context into the working directory and
// remembers what it created or replaced so a failed build can be undone.
type materializer struct {
	source    string
	target    string
	ignore    []string
	skip      map[string]struct{}
	files     []string
	created   []string
	backupDir string
	backups   map[string]string
}

func newMaterializer(source, target string, ignore []string, skip ...string) (*materializer, error) {
	source, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}

	if source == target {
		return nil, errSourceIsWorkDir
	}

	m := &materializer{
		source:  source,
		target:  target,
		ignore:  ignore,
		skip:    make(map[string]struct{}, len(skip)+1),
		backups: make(map[string]string),
	}

	// The work directory may live inside the build context.
	m.skip[target] = struct{}{}
	for _, p := range skip {
		m.skip[filepath.Clean(p)] = struct{}{}
	}

	return m, nil
}

// copyTree materializes every entry below source, preserving relative structure.
func (m *materializer) copyTree(ctx context.Context) error {
	return filepath.WalkDir(m.source, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relative, err := filepath.Rel(m.source, current)
		if err != nil {
			return err
		}

		if relative == "." {
			return nil
		}

		if m.skipped(current, filepath.ToSlash(relative)) {
			if entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		destination := filepath.Join(m.target, relative)

		switch mode := entry.Type(); {
		case mode.IsDir():
			return m.makeDir(destination, entry)
		case mode&fs.ModeSymlink != 0:
			return m.copySymlink(current, destination)
		case mode.IsRegular():
			return m.copyFile(current, destination, entry)
		default:
			logger.WarnKV(ctx, "Skipping irregular file", "path", relative, "mode", mode.String())

			return nil
		}
	})
}

func (m *materializer) skipped(absolute, relative string) bool {
	if _, ok := m.skip[absolute]; ok {
		return true
	}

	for _, pattern := range m.ignore {
		pattern = strings.Trim(pattern, "/")
		if relative == pattern || strings.HasPrefix(relative, pattern+"/") {
			return true
		}

		if matched, _ := path.Match(pattern, relative); matched {
			return true
		}
	}

	return false
}

func (m *materializer) makeDir(destination string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}

	if _, err = os.Lstat(destination); err == nil {
		return nil
	}

	if err = os.Mkdir(destination, info.Mode().Perm()|0o700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	m.created = append(m.created, destination)

	return nil
}

func (m *materializer) copySymlink(source, destination string) error {
	link, err := os.Readlink(source)
	if err != nil {
		return err
	}

	if _, err = os.Lstat(destination); err == nil {
		if err = m.backup(destination); err != nil {
			return err
		}
	}

	if err = os.Symlink(link, destination); err != nil {
		return fmt.Errorf("create symlink: %w", err)
	}

	m.files = append(m.files, destination)

	return nil
}

// copyFile writes the file through go-update so the target is replaced
// atomically and only after its checksum has been verified.
func (m *materializer) copyFile(source, destination string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Clean(source))
	if err != nil {
		return err
	}

	sum, err := checksum(data)
	if err != nil {
		return err
	}

	options := goupdate.Options{
		TargetPath: destination,
		TargetMode: info.Mode().Perm(),
		Checksum:   sum,
		Hash:       checksumFunction,
	}

	_, err = os.Lstat(destination)

	switch {
	case err == nil:
		// go-update moves the previous contents to OldSavePath instead of deleting them.
		if options.OldSavePath, err = m.backupPath(); err != nil {
			return err
		}
	case errors.Is(err, os.ErrNotExist):
		if err = os.WriteFile(destination, nil, info.Mode().Perm()); err != nil {
			return fmt.Errorf("create %s: %w", destination, err)
		}
	default:
		return err
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("materialize %s: %w", destination, err)
	}

	m.files = append(m.files, destination)

	if options.OldSavePath != "" {
		m.backups[destination] = options.OldSavePath
	}

	return os.Chmod(destination, info.Mode().Perm())
}

// backupPath returns a fresh location for a replaced file.
func (m *materializer) backupPath() (string, error) {
	if m.backupDir == "" {
		dir, err := os.MkdirTemp(m.target, backupPrefix)
		if err != nil {
			return "", fmt.Errorf("create backup directory: %w", err)
		}

		m.backupDir = dir
	}

	return filepath.Join(m.backupDir, strconv.Itoa(len(m.backups))), nil
}

// backup moves the existing destination aside so undo can put it back.
func (m *materializer) backup(destination string) error {
	saved, err := m.backupPath()
	if err != nil {
		return err
	}

	if err = os.Rename(destination, saved); err != nil {
		return fmt.Errorf("back up %s: %w", destination, err)
	}

	m.backups[destination] = saved

	return nil
}

// undo removes materialized files, restores the ones they replaced and then
// removes the directories created for them.
func (m *materializer) undo() error {
	var errs []error

	for i := len(m.files) - 1; i >= 0; i-- {
		destination := m.files[i]
		if err := os.Remove(destination); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}

		if saved, ok := m.backups[destination]; ok {
			if err := os.Rename(saved, destination); err != nil {
				errs = append(errs, fmt.Errorf("restore %s: %w", destination, err))
			}
		}
	}

	for i := len(m.created) - 1; i >= 0; i-- {
		_ = os.Remove(m.created[i])
	}

	if len(errs) == 0 {
		m.discard()
	}

	return errors.Join(errs...)
}

// discard drops the copies of replaced files once they are no longer needed.
func (m *materializer) discard() {
	if m.backupDir == "" {
		return
	}

	if err := os.RemoveAll(m.backupDir); err == nil {
		m.backupDir = ""
		clear(m.backups)
	}
}

// count returns the number of materialized files and symlinks.
func (m *materializer) count() int {
	return len(m.files)
}
