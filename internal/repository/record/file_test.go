package record

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/innometrics/innometrics-backend/internal/domain/bootstrap"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))

	r, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, r)

	require.NoError(t, repo.Delete(context.Background()))
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal record.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "build.json")
	repo := NewFileRepository(file)

	want := &domain.Record{
		Layout: domain.Layout{
			Root:               "/innometrics-backend",
			RootVariable:       "INNOMETRICS_PATH",
			SearchPathVariable: "PYTHONPATH",
			SearchPathSubdirs:  []string{"api", "db"},
		},
		Interpreter:      "python",
		EntryPoint:       "api/app.py",
		Toolchain:        "pip==19.3.1",
		Manifest:         "requirements.txt",
		ManifestChecksum: "c2hhNTEy",
		Requirements:     []string{"Flask==1.1.1", "bcrypt"},
		Files:            42,
		BuiltAt:          time.Now().UTC().Truncate(time.Millisecond),
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = os.Stat(file + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, repo.Delete(context.Background()))

	_, err = repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

// TestFileRepository_Malformed rejects records without a root.
func TestFileRepository_Malformed(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "build.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"entry_point": "api/app.py"}`), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.ErrorIs(t, err, errMalformed)
}
