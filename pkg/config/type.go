package config

type EstimatorConfig struct {
	// DIN or HISTORIC
	ReferenceSource string `toml:"reference_source"`
	// Only used for HISTORIC
	ReferenceYear int `toml:"reference_year"`
	// Readings as "YYYY-MM-DD <usage>" lines. Empty reads the meter database.
	ReadingsFile  string `toml:"readings_file"`
	MaxIterations int    `toml:"max_iterations"`
	LogLevel      string `toml:"log_level"`
}

type MeterCollectorConfig struct {
	InterpreterAPIHost string `toml:"interpreter_api_host"`
	TLSEnabled         bool   `toml:"tls_enabled"`
	// Raw gas readings older than this are deleted once snapshotted.
	RetentionDays int    `toml:"retention_days"`
	LogLevel      string `toml:"log_level"`
}

type InterpreterAPIConfig struct {
	SerialDevice    string `toml:"serial_device"`
	Baudrate        uint   `toml:"baudrate"`
	ListenAddress   string `toml:"listen_address"`
	ListenPort      int    `toml:"listen_port"`
	// Reference data used by the /estimate endpoint
	ReferenceSource string `toml:"reference_source"`
	ReferenceYear   int    `toml:"reference_year"`
	LogLevel        string `toml:"log_level"`
}
