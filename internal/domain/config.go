package domain

// Config mirrors ~/.voicectl/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Server              ServerSettings    `yaml:"server"`
	Storage             StorageSettings   `yaml:"storage"`
	Execution           ExecutionSettings `yaml:"execution"`
	Security            SecuritySettings  `yaml:"security"`
	Logging             LoggingSettings   `yaml:"logging"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Port                int `yaml:"port"`
	ReadTimeoutSeconds  int `yaml:"read_timeout"`
	WriteTimeoutSeconds int `yaml:"write_timeout"`
	HistoryLimit        int `yaml:"history_limit"`
}

// StorageSettings selects and tunes the command history backend.
type StorageSettings struct {
	Driver                string `yaml:"driver"`
	URI                   string `yaml:"uri"`
	Database              string `yaml:"database"`
	Collection            string `yaml:"collection"`
	SQLitePath            string `yaml:"sqlite_path"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout"`
	ProbeIntervalSeconds  int    `yaml:"probe_interval"`
	BufferCapacity        int    `yaml:"buffer_capacity"`
}

// ExecutionSettings controls how host actions run.
type ExecutionSettings struct {
	Platform           string `yaml:"platform"`
	InfoTimeoutSeconds int    `yaml:"info_timeout"`
}

// SecuritySettings defines guardrail behavior.
type SecuritySettings struct {
	Enabled   bool   `yaml:"enabled"`
	RulesFile string `yaml:"rules_file"`
}

// LoggingSettings configures the zap logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Storage drivers.
const (
	StorageDriverMongo  = "mongo"
	StorageDriverSQLite = "sqlite"
	StorageDriverMemory = "memory"
)
