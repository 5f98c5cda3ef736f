package pathing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoriesFromEnv(t *testing.T) {
	root := t.TempDir()
	t.Setenv("GAS_ESTIMATOR_DATA_DIR", filepath.Join(root, "data"))
	t.Setenv("GAS_ESTIMATOR_CONFIG_DIR", filepath.Join(root, "etc"))

	require.NoError(t, EnsureDirectories())
	assert.DirExists(t, filepath.Join(root, "data"))
	assert.DirExists(t, filepath.Join(root, "etc"))
	assert.Equal(t, filepath.Join(root, "data", "gas-meter.db"), GetMeterDbPath())
}

func TestDefaultDirectories(t *testing.T) {
	t.Setenv("GAS_ESTIMATOR_DATA_DIR", "")
	t.Setenv("GAS_ESTIMATOR_CONFIG_DIR", "")
	os.Unsetenv("GAS_ESTIMATOR_DATA_DIR")
	os.Unsetenv("GAS_ESTIMATOR_CONFIG_DIR")

	assert.Equal(t, "/var/lib/gas_usage_estimator", GetDataDir())
	assert.Equal(t, "/etc/gas_usage_estimator", GetConfigDir())
}
