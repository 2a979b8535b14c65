package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/innometrics/innometrics-backend/internal/config"
	"github.com/innometrics/innometrics-backend/internal/service/bootstrap"
)

const entryPointScript = `printf '%s\n%s\n%s\n' "$INNOMETRICS_PATH" "$PYTHONPATH" "$(pwd)" > run.out
exit "${APP_EXIT:-0}"
`

// writeSource lays out a minimal application source tree.
func writeSource(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"api/app.sh":       entryPointScript,
		"api/constants.py": "MESSAGE_KEY = 'message'\n",
		"db/models.py":     "class User: pass\n",
		"requirements.txt": "Flask==1.1.1\n# comment\nbcrypt>=3.1\n",
		".git/HEAD":        "ref: refs/heads/master\n",
	}

	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}
}

// TestBootstrap_BuildAndRun drives both phases through real processes: a shell
// stands in for the package installer and the interpreter.
//
//nolint:paralleltest // Uses t.Setenv.
func TestBootstrap_BuildAndRun(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "context")
	workDir := filepath.Join(dir, "innometrics-backend")
	writeSource(t, source)

	cfgPath := filepath.Join(dir, config.DefaultBootstrapFilename)
	require.NoError(t, config.SaveBootstrap(cfgPath, &config.Bootstrap{
		WorkDir:   workDir,
		SourceDir: source,
		Ignore:    []string{".git"},
		Toolchain: config.Toolchain{
			Installer: []string{"sh", "-c", `printf '%s\n' "$*" >> installs.log`, "installer"},
		},
		Interpreter: "sh",
		EntryPoint:  "api/app.sh",
		LockFile:    filepath.Join(dir, "bootstrap.lock"),
	}))

	t.Setenv("PYTHONPATH", "/inherited")
	t.Setenv("APP_EXIT", "")

	ctx := context.Background()
	opts := &bootstrap.Options{ConfigPath: cfgPath}

	require.NoError(t, bootstrap.Build(ctx, opts))

	installs, err := os.ReadFile(filepath.Join(workDir, "installs.log"))
	require.NoError(t, err)
	require.Equal(t,
		"install pip==19.3.1\ninstall -r "+filepath.Join(workDir, "requirements.txt")+"\n",
		string(installs))

	_, err = os.Stat(filepath.Join(workDir, ".git"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, bootstrap.Run(ctx, opts))

	out, err := os.ReadFile(filepath.Join(workDir, "run.out"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Equal(t, []string{
		workDir,
		strings.Join([]string{"/inherited", workDir, filepath.Join(workDir, "api"), filepath.Join(workDir, "db")},
			string(os.PathListSeparator)),
		workDir,
	}, lines)

	variables, err := bootstrap.Environment(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, workDir, variables[config.DefaultRootVariable])

	t.Setenv("APP_EXIT", "7")

	err = bootstrap.Run(ctx, opts)

	var exitErr *bootstrap.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 7, exitErr.Code)
}

// TestBootstrap_RunWithoutBuild reports the missing build.
func TestBootstrap_RunWithoutBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.DefaultBootstrapFilename)
	require.NoError(t, config.SaveBootstrap(cfgPath, &config.Bootstrap{
		WorkDir:   filepath.Join(dir, "innometrics-backend"),
		SourceDir: filepath.Join(dir, "context"),
		LockFile:  filepath.Join(dir, "bootstrap.lock"),
	}))

	err := bootstrap.Run(context.Background(), &bootstrap.Options{ConfigPath: cfgPath})
	require.ErrorIs(t, err, bootstrap.ErrNotBuilt)
}
