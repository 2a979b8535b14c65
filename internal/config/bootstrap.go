package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Bootstrap describes how innometrics-bootstrap builds and starts the application.
type Bootstrap struct {
	// WorkDir is the installation root. Relative values are made absolute by Validate.
	WorkDir string `yaml:"work_dir"`
	// SourceDir is the build context copied into WorkDir.
	SourceDir string `yaml:"source_dir"`
	// Ignore lists slash-separated paths, relative to SourceDir, that are not copied.
	Ignore []string `yaml:"ignore,omitempty"`
	// Manifest is the dependency manifest, relative to WorkDir.
	Manifest string `yaml:"manifest"`
	// Toolchain pins the packaging tool installed before the manifest.
	Toolchain Toolchain `yaml:"toolchain"`
	// Interpreter runs the entry point. Empty means the entry point is executed directly.
	Interpreter string `yaml:"interpreter"`
	// EntryPoint is the program started by `run`, relative to WorkDir.
	EntryPoint string `yaml:"entry_point"`
	// RootVariable names the installation-root environment variable.
	RootVariable string `yaml:"root_variable"`
	// SearchPathVariable names the module-search-path environment variable.
	SearchPathVariable string `yaml:"search_path_variable"`
	// SearchPathSubdirs are appended to the search path after the root, in order.
	SearchPathSubdirs []string `yaml:"search_path_subdirs"`
	// RecordFile is where a successful build is recorded, relative to WorkDir.
	RecordFile string `yaml:"record_file"`
	// LockFile guards against concurrent builds.
	LockFile string `yaml:"lock_file"`
}

// Toolchain is the packaging tool and the exact version installed in step 3.
type Toolchain struct {
	// Installer is the command prefix used for every installation, e.g. ["pip"].
	Installer []string `yaml:"installer"`
	// Package is the toolchain package name.
	Package string `yaml:"package"`
	// Version is the exact toolchain version.
	Version string `yaml:"version"`
	// InstallArgs are appended after "install" on every invocation.
	InstallArgs []string `yaml:"install_args,omitempty"`
}

// Pin renders the toolchain requirement, e.g. "pip==19.3.1".
func (t Toolchain) Pin() string {
	return t.Package + "==" + t.Version
}

const (
	// DefaultBootstrapFilename is looked up in the current directory when no --config is given.
	DefaultBootstrapFilename = "innometrics-bootstrap.yaml"

	// DefaultWorkDir is the installation root of the original container image.
	DefaultWorkDir = "/innometrics-backend"

	// DefaultRootVariable is the installation-root variable read by the application.
	DefaultRootVariable = "INNOMETRICS_PATH"

	// DefaultSearchPathVariable is the interpreter's module search path variable.
	DefaultSearchPathVariable = "PYTHONPATH"

	// DefaultRecordFilename stores the outcome of the last successful build.
	DefaultRecordFilename = ".innometrics-build.json"

	defaultLockPrefix = "innometrics-bootstrap-"
)

var (
	errWorkDirRequired       = errors.New("work directory must be provided")
	errInstallerRequired     = errors.New("toolchain installer must be provided")
	errToolchainPinRequired  = errors.New("toolchain package and version must be provided")
	errEntryPointRequired    = errors.New("entry point must be provided")
	errVariableNamesRequired = errors.New("environment variable names must be provided")
	errNotLocalPath          = errors.New("path must be relative and stay inside the work directory")
)

// DefaultBootstrap returns the settings equivalent to the original container definition.
func DefaultBootstrap() *Bootstrap {
	cfg := new(Bootstrap)
	_ = ValidateBootstrap(cfg) //nolint:errcheck // Defaults always validate.

	return cfg
}

// LoadBootstrap reads bootstrap settings. An empty path means DefaultBootstrapFilename,
// which may be absent, in which case defaults are used. An explicit path must exist.
func LoadBootstrap(path string) (*Bootstrap, error) {
	if path == "" {
		if _, err := os.Stat(DefaultBootstrapFilename); errors.Is(err, os.ErrNotExist) {
			return DefaultBootstrap(), nil
		}

		path = DefaultBootstrapFilename
	}

	var cfg Bootstrap
	if err := readYAML(path, &cfg); err != nil {
		return nil, err
	}

	if err := ValidateBootstrap(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveBootstrap writes cfg to path after validating it.
func SaveBootstrap(path string, cfg *Bootstrap) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultBootstrapFilename
	}

	if err := ValidateBootstrap(cfg); err != nil {
		return err
	}

	return writeYAML(path, cfg)
}

// ValidateBootstrap fills defaults and checks that every path stays where it must.
func ValidateBootstrap(cfg *Bootstrap) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	fillBootstrapDefaults(cfg)

	if cfg.WorkDir == "" {
		return errWorkDirRequired
	}

	workDir, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return fmt.Errorf("resolve work directory: %w", err)
	}

	cfg.WorkDir = workDir

	if cfg.LockFile == "" {
		cfg.LockFile = defaultLockFile(workDir)
	}

	if len(cfg.Toolchain.Installer) == 0 || cfg.Toolchain.Installer[0] == "" {
		return errInstallerRequired
	}

	if cfg.Toolchain.Package == "" || cfg.Toolchain.Version == "" {
		return errToolchainPinRequired
	}

	if cfg.EntryPoint == "" {
		return errEntryPointRequired
	}

	if cfg.RootVariable == "" || cfg.SearchPathVariable == "" {
		return errVariableNamesRequired
	}

	for _, path := range append([]string{cfg.EntryPoint, cfg.Manifest}, cfg.SearchPathSubdirs...) {
		if !filepath.IsLocal(filepath.FromSlash(path)) {
			return fmt.Errorf("%q: %w", path, errNotLocalPath)
		}
	}

	return nil
}

// RecordPath returns the absolute location of the build record.
func (b *Bootstrap) RecordPath() string {
	return resolve(b.WorkDir, b.RecordFile)
}

// ManifestPath returns the absolute location of the dependency manifest.
func (b *Bootstrap) ManifestPath() string {
	return filepath.Join(b.WorkDir, filepath.FromSlash(b.Manifest))
}

// EntryPointPath returns the absolute location of the entry point.
func (b *Bootstrap) EntryPointPath() string {
	return filepath.Join(b.WorkDir, filepath.FromSlash(b.EntryPoint))
}

// defaultLockFile keeps one lock per work directory outside of it, since a
// failed build may remove the work directory.
func defaultLockFile(workDir string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(workDir)))

	return filepath.Join(os.TempDir(), defaultLockPrefix+id.String()+".lock")
}

func fillBootstrapDefaults(cfg *Bootstrap) {
	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}

	if cfg.SourceDir == "" {
		cfg.SourceDir = "."
	}

	if cfg.Manifest == "" {
		cfg.Manifest = "requirements.txt"
	}

	if len(cfg.Toolchain.Installer) == 0 {
		cfg.Toolchain.Installer = []string{"pip"}
	}

	if cfg.Toolchain.Package == "" {
		cfg.Toolchain.Package = "pip"
	}

	if cfg.Toolchain.Version == "" {
		cfg.Toolchain.Version = "19.3.1"
	}

	if cfg.Interpreter == "" && cfg.EntryPoint == "" {
		cfg.Interpreter = "python"
	}

	if cfg.EntryPoint == "" {
		cfg.EntryPoint = "api/app.py"
	}

	if cfg.RootVariable == "" {
		cfg.RootVariable = DefaultRootVariable
	}

	if cfg.SearchPathVariable == "" {
		cfg.SearchPathVariable = DefaultSearchPathVariable
	}

	if cfg.SearchPathSubdirs == nil {
		cfg.SearchPathSubdirs = []string{"api", "db"}
	}

	if cfg.RecordFile == "" {
		cfg.RecordFile = DefaultRecordFilename
	}
}
