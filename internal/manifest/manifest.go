package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Kind identifies the manifest format.
type Kind string

const (
	// KindRequirements is a pip requirements file, installed with `install -r`.
	KindRequirements Kind = "requirements"
	// KindPyProject is a pyproject.toml whose [project] dependencies are installed by name.
	KindPyProject Kind = "pyproject"
)

// Requirement is a single package name with its (possibly empty) constraint.
type Requirement struct {
	// Name is the distribution name, extras excluded. It is empty for a
	// direct reference without an "#egg=" fragment.
	Name string
	// Constraint is everything after the name and extras, markers excluded (e.g. "==1.1.1").
	Constraint string
	// Line is the requirement as written in the manifest.
	Line string
}

// Manifest is a parsed dependency manifest.
type Manifest struct {
	// Path is the manifest location.
	Path string
	// Kind is derived from the file name.
	Kind Kind
	// Requirements are listed in file order.
	Requirements []Requirement
	// Options are pip option lines (-r, --index-url, ...) of a requirements file.
	Options []string
}

var (
	// ErrInvalidRequirement is returned for entries without a usable package name.
	ErrInvalidRequirement = errors.New("invalid requirement")
	// ErrNothingToInstall is returned by InstallArgs when a pyproject lists no dependencies.
	ErrNothingToInstall = errors.New("manifest lists no dependencies")
)

// pyProject mirrors the parts of pyproject.toml used here.
type pyProject struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// Parse reads and validates the manifest at path.
func Parse(path string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m := &Manifest{
		Path: path,
		Kind: KindOf(path),
	}

	switch m.Kind {
	case KindPyProject:
		err = m.parsePyProject(contents)
	default:
		err = m.parseRequirements(contents)
	}

	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", filepath.Base(path), err)
	}

	return m, nil
}

// KindOf picks the manifest format from the file name.
func KindOf(path string) Kind {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return KindPyProject
	}

	return KindRequirements
}

// InstallArgs returns the installer arguments that follow "install".
func (m *Manifest) InstallArgs() ([]string, error) {
	if m.Kind == KindRequirements {
		return []string{"-r", m.Path}, nil
	}

	if len(m.Requirements) == 0 {
		return nil, ErrNothingToInstall
	}

	return m.Lines(), nil
}

// Lines returns the requirement lines in manifest order.
func (m *Manifest) Lines() []string {
	lines := make([]string, 0, len(m.Requirements))
	for _, requirement := range m.Requirements {
		lines = append(lines, requirement.Line)
	}

	return lines
}

func (m *Manifest) parsePyProject(contents []byte) error {
	var project pyProject
	if _, err := toml.Decode(string(contents), &project); err != nil {
		return err
	}

	for _, line := range project.Project.Dependencies {
		requirement, err := ParseRequirement(line)
		if err != nil {
			return err
		}

		m.Requirements = append(m.Requirements, requirement)
	}

	return nil
}

func (m *Manifest) parseRequirements(contents []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(contents))

	var (
		pending string
		number  int
	)

	for scanner.Scan() {
		number++

		line := scanner.Text()
		if strings.HasSuffix(line, `\`) {
			pending += strings.TrimSuffix(line, `\`)
			continue
		}

		if err := m.addLine(pending + line); err != nil {
			return fmt.Errorf("line %d: %w", number, err)
		}

		pending = ""
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	// pip accepts a continuation on the last line.
	if err := m.addLine(pending); err != nil {
		return fmt.Errorf("line %d: %w", number, err)
	}

	return nil
}

func (m *Manifest) addLine(line string) error {
	line = strings.TrimSpace(stripComment(line))

	switch {
	case line == "":
		return nil
	case strings.HasPrefix(line, "-"):
		m.Options = append(m.Options, line)

		return nil
	case IsDirectReference(line):
		m.Requirements = append(m.Requirements, Requirement{
			Name: eggName(line),
			Line: line,
		})

		return nil
	}

	requirement, err := ParseRequirement(line)
	if err != nil {
		return err
	}

	m.Requirements = append(m.Requirements, requirement)

	return nil
}

// IsDirectReference reports whether line names an archive URL, a VCS checkout or
// a local path rather than a distribution. Such lines go to the installer verbatim.
func IsDirectReference(line string) bool {
	for _, prefix := range []string{".", "/", "~", "git+", "hg+", "svn+", "bzr+"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	scheme, _, found := strings.Cut(line, "://")
	if !found || scheme == "" || !isLetter(scheme[0]) {
		return false
	}

	for i := range len(scheme) {
		if c := scheme[i]; !isAlphaNumeric(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}

	return true
}

// eggName returns the project name given by an "#egg=" fragment, if any.
func eggName(line string) string {
	_, fragment, found := strings.Cut(line, "#egg=")
	if !found {
		return ""
	}

	end := 0
	for end < len(fragment) && isNameByte(fragment[end]) {
		end++
	}

	return fragment[:end]
}

// ParseRequirement splits a PEP 508 style line into name and constraint.
func ParseRequirement(line string) (Requirement, error) {
	line = strings.TrimSpace(line)

	end := 0
	for end < len(line) && isNameByte(line[end]) {
		end++
	}

	name := line[:end]
	if name == "" || !isAlphaNumeric(name[0]) || !isAlphaNumeric(name[len(name)-1]) {
		return Requirement{}, fmt.Errorf("%q: %w", line, ErrInvalidRequirement)
	}

	rest := strings.TrimSpace(line[end:])

	if strings.HasPrefix(rest, "[") {
		closing := strings.IndexByte(rest, ']')
		if closing < 0 {
			return Requirement{}, fmt.Errorf("%q: unterminated extras: %w", line, ErrInvalidRequirement)
		}

		rest = strings.TrimSpace(rest[closing+1:])
	}

	if rest != "" && !strings.ContainsRune("<>=!~;@(", rune(rest[0])) {
		return Requirement{}, fmt.Errorf("%q: %w", line, ErrInvalidRequirement)
	}

	constraint, _, _ := strings.Cut(rest, ";")

	return Requirement{
		Name:       name,
		Constraint: strings.TrimSpace(constraint),
		Line:       line,
	}, nil
}

// stripComment removes a trailing "#" comment; pip only treats "#" at line start
// or after whitespace as a comment.
func stripComment(line string) string {
	for i := range len(line) {
		if line[i] == '#' && (i == 0 || line[i-1] == ' ' || line[i-1] == '\t') {
			return line[:i]
		}
	}

	return line
}

func isNameByte(c byte) bool {
	return isAlphaNumeric(c) || c == '.' || c == '_' || c == '-'
}

func isAlphaNumeric(c byte) bool {
	return isLetter(c) || c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
