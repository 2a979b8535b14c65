package bootstrap

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/innometrics/innometrics-backend/internal/config"
	"github.com/innometrics/innometrics-backend/internal/repository/record"
)

// Sequencer runs the two phases for one configuration.
type Sequencer struct {
	// cfg is the validated bootstrap configuration.
	cfg *config.Bootstrap
	// records persists the outcome of Build.
	records record.Repository
	// executor runs installer commands during Build.
	executor Executor
	// environ is the inherited environment, os.Environ() by default.
	environ []string
	// stdin, stdout and stderr are handed to the entry point.
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithExecutor replaces the executor used for installer commands.
func WithExecutor(executor Executor) Option {
	return func(s *Sequencer) {
		if executor != nil {
			s.executor = executor
		}
	}
}

// WithEnviron sets the environment the phases inherit.
func WithEnviron(environ []string) Option {
	return func(s *Sequencer) {
		s.environ = append([]string(nil), environ...)
	}
}

// WithStdio sets the standard streams of the entry point and installers.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(s *Sequencer) {
		s.stdin, s.stdout, s.stderr = stdin, stdout, stderr
	}
}

// WithRecords replaces the build record repository.
func WithRecords(records record.Repository) Option {
	return func(s *Sequencer) {
		if records != nil {
			s.records = records
		}
	}
}

// New creates a Sequencer for cfg, which must already be validated.
func New(cfg *config.Bootstrap, opts ...Option) *Sequencer {
	s := &Sequencer{
		cfg:     cfg,
		records: record.NewFileRepository(cfg.RecordPath()),
		environ: os.Environ(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	s.executor = &SystemExecutor{Stdout: s.stdout, Stderr: s.stderr}

	for _, opt := range opts {
		opt(s)
	}

	if system, ok := s.executor.(*SystemExecutor); ok {
		system.Stdout, system.Stderr = s.stdout, s.stderr
	}

	return s
}

// Environment returns the two variables Run would add. The recorded layout is
// used when a build exists, the configured one otherwise.
func (s *Sequencer) Environment(ctx context.Context) (map[string]string, error) {
	layout := layoutOf(s.cfg)

	built, err := s.records.Load(ctx)
	switch {
	case err == nil:
		layout = built.Layout
	case errors.Is(err, record.ErrNotFound):
	default:
		return nil, err
	}

	return layout.Variables(lookupEnv(s.environ, layout.SearchPathVariable)), nil
}

// lookupEnv returns the last value of name in environ.
func lookupEnv(environ []string, name string) string {
	var value string

	for _, entry := range environ {
		if v, ok := strings.CutPrefix(entry, name+"="); ok {
			value = v
		}
	}

	return value
}
