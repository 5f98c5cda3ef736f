package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/pathing"
)

var (
	ActiveEstimatorConfig      *EstimatorConfig
	ActiveInterpreterAPIConfig *InterpreterAPIConfig
	ActiveMeterCollectorConfig *MeterCollectorConfig
)

func DefaultEstimatorConfig() *EstimatorConfig {
	return &EstimatorConfig{
		ReferenceSource: "HISTORIC",
		ReferenceYear:   2024,
		ReadingsFile:    "",
		MaxIterations:   200,
		LogLevel:        "info",
	}
}

func DefaultInterpreterAPIConfig() *InterpreterAPIConfig {
	return &InterpreterAPIConfig{
		SerialDevice:    "/dev/ttyUSB0",
		Baudrate:        115200,
		ListenAddress:   "0.0.0.0",
		ListenPort:      9039,
		ReferenceSource: "HISTORIC",
		ReferenceYear:   2024,
		LogLevel:        "info",
	}
}

func DefaultMeterCollectorConfig() *MeterCollectorConfig {
	return &MeterCollectorConfig{
		InterpreterAPIHost: "localhost:9039",
		TLSEnabled:         false,
		RetentionDays:      90,
		LogLevel:           "info",
	}
}

func LoadEstimatorConfig() error {
	cfg := DefaultEstimatorConfig()
	if err := loadOrCreate(filepath.Join(pathing.GetConfigDir(), "estimator.toml"), cfg); err != nil {
		return err
	}
	ActiveEstimatorConfig = cfg
	return nil
}

func LoadInterpreterAPIConfig() error {
	cfg := DefaultInterpreterAPIConfig()
	if err := loadOrCreate(filepath.Join(pathing.GetConfigDir(), "interpreter_api.toml"), cfg); err != nil {
		return err
	}
	ActiveInterpreterAPIConfig = cfg
	return nil
}

func LoadMeterCollectorConfig() error {
	cfg := DefaultMeterCollectorConfig()
	if err := loadOrCreate(filepath.Join(pathing.GetConfigDir(), "meter_collector.toml"), cfg); err != nil {
		return err
	}
	ActiveMeterCollectorConfig = cfg
	return nil
}

// loadOrCreate decodes the file at configPath over the defaults already in
// cfg. A missing file is created from those defaults.
func loadOrCreate(configPath string, cfg any) error {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		return toml.NewEncoder(cfgFile).Encode(cfg)
	}

	// Load existing config
	_, err := toml.DecodeFile(configPath, cfg)
	return err
}
