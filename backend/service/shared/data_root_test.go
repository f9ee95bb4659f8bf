package shared

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDataRoot_PrefersConfigured(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "root")
	t.Setenv(DataRootEnv, t.TempDir())

	require.Equal(t, dir, ResolveDataRoot(dir))
	require.DirExists(t, dir)
}

func TestResolveDataRoot_FallsBackToEnv(t *testing.T) {
	env := t.TempDir()
	t.Setenv(DataRootEnv, env)

	require.Equal(t, env, ResolveDataRoot(""))
}

func TestAppLogPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("x", "runtime", "app.log"), AppLogPath("x"))
}
