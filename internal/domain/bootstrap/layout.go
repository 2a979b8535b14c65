package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
)

// Phase is one of the two states of the bootstrap sequence.
type Phase string

const (
	// PhaseBuilding covers working directory, materialization and installation.
	PhaseBuilding Phase = "BUILDING"
	// PhaseRunning is entered on every start and ends when the entry point exits.
	PhaseRunning Phase = "RUNNING"
)

// Layout describes the installation root and the two variables derived from it.
type Layout struct {
	// Root is the absolute installation root.
	Root string
	// RootVariable names the variable holding Root.
	RootVariable string
	// SearchPathVariable names the module search path variable.
	SearchPathVariable string
	// SearchPathSubdirs are the subdirectories of Root appended after Root.
	SearchPathSubdirs []string
}

// Segments returns the search path entries contributed by the layout: the root
// followed by each subdirectory, in order.
func (l *Layout) Segments() []string {
	segments := make([]string, 0, len(l.SearchPathSubdirs)+1)
	segments = append(segments, l.Root)

	for _, subdir := range l.SearchPathSubdirs {
		segments = append(segments, filepath.Join(l.Root, filepath.FromSlash(subdir)))
	}

	return segments
}

// SearchPath extends inherited with the layout segments. A non-empty inherited
// value is kept verbatim as the prefix.
func (l *Layout) SearchPath(inherited string) string {
	joined := strings.Join(l.Segments(), string(os.PathListSeparator))
	if inherited == "" {
		return joined
	}

	return inherited + string(os.PathListSeparator) + joined
}

// Variables returns the two variables for an environment where the search path
// variable currently holds inherited.
func (l *Layout) Variables(inherited string) map[string]string {
	return map[string]string{
		l.RootVariable:       l.Root,
		l.SearchPathVariable: l.SearchPath(inherited),
	}
}

// Environ returns base (in os.Environ form) with both variables set. The
// inherited search path is taken from base; earlier definitions of either
// variable are dropped so the result holds exactly one of each.
func (l *Layout) Environ(base []string) []string {
	inherited := lookup(base, l.SearchPathVariable)
	variables := l.Variables(inherited)

	result := make([]string, 0, len(base)+len(variables))

	for _, entry := range base {
		name, _, _ := strings.Cut(entry, "=")
		if _, overridden := variables[name]; overridden {
			continue
		}

		result = append(result, entry)
	}

	return append(result,
		l.RootVariable+"="+variables[l.RootVariable],
		l.SearchPathVariable+"="+variables[l.SearchPathVariable],
	)
}

// lookup returns the last value of name in env, matching os/exec semantics.
func lookup(env []string, name string) string {
	var value string

	for _, entry := range env {
		key, v, ok := strings.Cut(entry, "=")
		if ok && key == name {
			value = v
		}
	}

	return value
}
