package pathing

import (
	"os"
	"path/filepath"
)

const (
	defaultDataDir   = "/var/lib/gas_usage_estimator"
	defaultConfigDir = "/etc/gas_usage_estimator"
)

// EnsureDirectories creates the data and config directories.
// Must be called on startup by every service.
func EnsureDirectories() error {
	dirs := []string{
		GetDataDir(),
		GetConfigDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func GetMeterDbPath() string {
	return filepath.Join(GetDataDir(), "gas-meter.db")
}

// GAS_ESTIMATOR_DATA_DIR overrides the default, mostly for development.
func GetDataDir() string {
	if dir := os.Getenv("GAS_ESTIMATOR_DATA_DIR"); dir != "" {
		return dir
	}
	return defaultDataDir
}

func GetConfigDir() string {
	if dir := os.Getenv("GAS_ESTIMATOR_CONFIG_DIR"); dir != "" {
		return dir
	}
	return defaultConfigDir
}
