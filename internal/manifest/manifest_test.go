package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

// TestParse_Requirements reads names, constraints, options and comments from a requirements file.
func TestParse_Requirements(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "requirements.txt", `# API
Flask==1.1.1
flask-login>=0.4.1  # sessions
bcrypt
PyJWT[crypto] ~= 1.7 ; python_version >= "3.6"
--index-url https://pypi.org/simple
mongoengine \
    ==0.18.2
`)

	m, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, KindRequirements, m.Kind)
	require.Equal(t, []string{"--index-url https://pypi.org/simple"}, m.Options)

	names := make([]string, 0, len(m.Requirements))
	for _, requirement := range m.Requirements {
		names = append(names, requirement.Name)
	}

	require.Equal(t, []string{"Flask", "flask-login", "bcrypt", "PyJWT", "mongoengine"}, names)
	require.Equal(t, "==1.1.1", m.Requirements[0].Constraint)
	require.Equal(t, ">=0.4.1", m.Requirements[1].Constraint)
	require.Empty(t, m.Requirements[2].Constraint)
	require.Equal(t, "~= 1.7", m.Requirements[3].Constraint)
	require.Equal(t, "==0.18.2", m.Requirements[4].Constraint)

	args, err := m.InstallArgs()
	require.NoError(t, err)
	require.Equal(t, []string{"-r", path}, args)
}

// TestParse_InvalidRequirement reports the offending line.
func TestParse_InvalidRequirement(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "requirements.txt", "flask==1.1.1\nflask 1.0\n")

	_, err := Parse(path)
	require.ErrorIs(t, err, ErrInvalidRequirement)
	require.Contains(t, err.Error(), "line 2")
}

// TestParse_DirectReferences keeps archive URLs, VCS checkouts and local paths verbatim.
func TestParse_DirectReferences(t *testing.T) {
	t.Parallel()

	lines := []string{
		"https://files.pythonhosted.org/packages/requests-2.22.0-py2.py3-none-any.whl",
		"git+https://github.com/pallets/flask.git@1.1.1#egg=flask",
		"hg+https://hg.example.com/repo#egg=mercurial-lib",
		"file:///opt/wheels/bcrypt-3.1.7.tar.gz",
		"./vendor/mylib",
		"../shared",
		"/opt/packages/pymongo",
		"~/src/toolkit",
	}

	path := writeFile(t, "requirements.txt", strings.Join(lines, "\n")+"\n")

	m, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, lines, m.Lines())
	require.Equal(t, "flask", m.Requirements[1].Name)
	require.Equal(t, "mercurial-lib", m.Requirements[2].Name)
	require.Empty(t, m.Requirements[0].Name)
	require.Empty(t, m.Requirements[4].Name)

	for _, line := range lines {
		require.True(t, IsDirectReference(line), line)
	}

	for _, line := range []string{"flask==1.1.1", "requests @ https://x/y.whl", "1http://x", ""} {
		require.False(t, IsDirectReference(line), line)
	}
}

// TestParse_TrailingContinuation keeps a requirement whose last line ends with a backslash.
func TestParse_TrailingContinuation(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "requirements.txt", "flask==1.1.1\nmongoengine==0.18.2 \\")

	m, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, []string{"flask==1.1.1", "mongoengine==0.18.2"}, m.Lines())
	require.Equal(t, "==0.18.2", m.Requirements[1].Constraint)
}

// TestParse_PyProject installs the listed dependencies by name.
func TestParse_PyProject(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "pyproject.toml", `
[project]
name = "innometrics-backend"
dependencies = ["flask==1.1.1", "flask-cors>=3.0"]
`)

	m, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, KindPyProject, m.Kind)

	args, err := m.InstallArgs()
	require.NoError(t, err)
	require.Equal(t, []string{"flask==1.1.1", "flask-cors>=3.0"}, args)

	empty := writeFile(t, "pyproject.toml", "[project]\nname = \"x\"\n")

	m, err = Parse(empty)
	require.NoError(t, err)

	_, err = m.InstallArgs()
	require.ErrorIs(t, err, ErrNothingToInstall)
}

// TestParseRequirement covers name edge cases.
func TestParseRequirement(t *testing.T) {
	t.Parallel()

	valid := map[string]string{
		"nonexistent-package==0.0.0": "nonexistent-package",
		"zope.interface":             "zope.interface",
		"requests @ https://x/y.whl": "requests",
		"apispec[yaml](>=3.0)":       "apispec",
	}
	for line, name := range valid {
		requirement, err := ParseRequirement(line)
		require.NoError(t, err, line)
		require.Equal(t, name, requirement.Name, line)
	}

	for _, line := range []string{"", "==1.0", "-flask", "flask-", "flask[extra", "flask 1.0"} {
		_, err := ParseRequirement(line)
		require.ErrorIs(t, err, ErrInvalidRequirement, line)
	}
}
