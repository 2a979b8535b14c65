package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLayout(root string) *Layout {
	return &Layout{
		Root:               root,
		RootVariable:       "INNOMETRICS_PATH",
		SearchPathVariable: "PYTHONPATH",
		SearchPathSubdirs:  []string{"api", "db"},
	}
}

// TestLayout_SearchPathOrder checks that the root precedes api and db.
func TestLayout_SearchPathOrder(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "innometrics-backend")
	layout := testLayout(root)

	sep := string(os.PathListSeparator)
	want := root + sep + filepath.Join(root, "api") + sep + filepath.Join(root, "db")

	require.Equal(t, want, layout.SearchPath(""))
	require.Equal(t, "/opt/lib"+sep+want, layout.SearchPath("/opt/lib"))
}

// TestLayout_EnvironKeepsInheritedPrefix verifies the inherited value stays a strict prefix.
func TestLayout_EnvironKeepsInheritedPrefix(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "app")
	layout := testLayout(root)
	inherited := "/usr/lib/site" + string(os.PathListSeparator) + "/srv/shared"

	env := layout.Environ([]string{
		"HOME=/root",
		"PYTHONPATH=/ignored",
		"PYTHONPATH=" + inherited,
		"INNOMETRICS_PATH=/stale",
	})

	values := map[string][]string{}

	for _, entry := range env {
		name, value, _ := strings.Cut(entry, "=")
		values[name] = append(values[name], value)
	}

	require.Equal(t, []string{"/root"}, values["HOME"])
	require.Equal(t, []string{root}, values["INNOMETRICS_PATH"])
	require.Len(t, values["PYTHONPATH"], 1)

	searchPath := values["PYTHONPATH"][0]
	require.True(t, strings.HasPrefix(searchPath, inherited+string(os.PathListSeparator)))
	require.True(t, strings.HasSuffix(searchPath, filepath.Join(root, "db")))
}

// TestLayout_EnvironDeterministic builds the environment twice from identical input.
func TestLayout_EnvironDeterministic(t *testing.T) {
	t.Parallel()

	layout := testLayout("/innometrics-backend")
	base := []string{"PATH=/usr/bin"}

	require.Equal(t, layout.Environ(base), layout.Environ(base))
	require.Equal(t, []string{"PATH=/usr/bin"}, base)
}
