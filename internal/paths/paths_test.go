package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDir_FlagWins(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/config")

	dir, err := ResolveConfigDir("/flag/config")
	require.NoError(t, err)
	assert.Equal(t, "/flag/config", dir)
}

func TestResolveConfigDir_EnvFallback(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/config")

	dir, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/config", dir)
}

func TestResolveDataDir_Precedence(t *testing.T) {
	t.Setenv(EnvDataDir, "/env/data")

	dir, err := ResolveDataDir("/flag/data", "/config/data")
	require.NoError(t, err)
	assert.Equal(t, "/flag/data", dir)

	dir, err = ResolveDataDir("", "/config/data")
	require.NoError(t, err)
	assert.Equal(t, "/config/data", dir)

	dir, err = ResolveDataDir("", "")
	require.NoError(t, err)
	assert.Equal(t, "/env/data", dir)
}

func TestResolveDataDir_CWDDefault(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	dir, err := ResolveDataDir("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDirName, filepath.Base(dir))
}
