package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/pkg/filesystem"
	"github.com/doeshing/voicectl/internal/ports"
)

// Environment variables consulted on every load.
const (
	EnvConfigPath    = "VOICECTL_CONFIG"
	EnvPort          = "PORT"
	EnvMongoURI      = "MONGODB_URI"
	EnvStorageDriver = "VOICECTL_STORAGE_DRIVER"
	EnvLogLevel      = "VOICECTL_LOG_LEVEL"
)

// FileLoader loads YAML configuration from ~/.voicectl/config.yaml (overridable via VOICECTL_CONFIG).
type FileLoader struct {
	overridePath string
	getenv       func(string) string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, getenv: os.Getenv}
}

// Load implements ports.ConfigProvider. A default file is written on first use;
// environment overrides are applied on top and never written back.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	cfg, err := l.LoadFile()
	if err != nil {
		return domain.Config{}, err
	}
	return l.applyEnv(cfg)
}

// LoadFile reads the YAML file without environment overrides.
func (l *FileLoader) LoadFile() (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("create config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, fmt.Errorf("write default config: %w", err)
			}
			return cfg, nil
		}
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return hydrateDefaults(cfg), nil
}

// Path returns the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := l.env(EnvConfigPath); custom != "" {
		return expandPath(custom)
	}
	return filesystem.DataPath("config.yaml")
}

func (l *FileLoader) env(key string) string {
	if l.getenv == nil {
		return os.Getenv(key)
	}
	return strings.TrimSpace(l.getenv(key))
}

func (l *FileLoader) applyEnv(cfg domain.Config) (domain.Config, error) {
	if raw := l.env(EnvPort); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Config{}, fmt.Errorf("%s=%q is not a port number", EnvPort, raw)
		}
		cfg.Server.Port = port
	}
	if uri := l.env(EnvMongoURI); uri != "" {
		cfg.Storage.URI = uri
	}
	if driver := l.env(EnvStorageDriver); driver != "" {
		cfg.Storage.Driver = strings.ToLower(driver)
	}
	if level := l.env(EnvLogLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Default returns the built-in configuration.
func Default() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Server: domain.ServerSettings{
			Port:                domain.DefaultPort,
			ReadTimeoutSeconds:  int(domain.DefaultReadTimeout.Seconds()),
			WriteTimeoutSeconds: int(domain.DefaultWriteTimeout.Seconds()),
			HistoryLimit:        domain.DefaultHistoryLimit,
		},
		Storage: domain.StorageSettings{
			Driver:                domain.StorageDriverMongo,
			URI:                   domain.DefaultMongoURI,
			Database:              domain.DefaultDatabase,
			Collection:            domain.DefaultCollection,
			SQLitePath:            filesystem.DataPath("history.db"),
			ConnectTimeoutSeconds: int(domain.DefaultConnectTimeout.Seconds()),
			ProbeIntervalSeconds:  int(domain.DefaultProbeInterval.Seconds()),
			BufferCapacity:        domain.FallbackBufferCapacity,
		},
		Execution: domain.ExecutionSettings{
			Platform:           "auto",
			InfoTimeoutSeconds: int(domain.InfoQueryTimeout.Seconds()),
		},
		Security: domain.SecuritySettings{
			Enabled:   true,
			RulesFile: filesystem.DataPath("guardrail.yaml"),
		},
		Logging: domain.LoggingSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	def := Default()
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = def.ConfigFormatVersion
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = def.Server.ReadTimeoutSeconds
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = def.Server.WriteTimeoutSeconds
	}
	if cfg.Server.HistoryLimit == 0 {
		cfg.Server.HistoryLimit = def.Server.HistoryLimit
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = def.Storage.Driver
	}
	if cfg.Storage.URI == "" {
		cfg.Storage.URI = def.Storage.URI
	}
	if cfg.Storage.Database == "" {
		cfg.Storage.Database = def.Storage.Database
	}
	if cfg.Storage.Collection == "" {
		cfg.Storage.Collection = def.Storage.Collection
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = def.Storage.SQLitePath
	}
	cfg.Storage.SQLitePath = expandPath(cfg.Storage.SQLitePath)
	if cfg.Storage.ConnectTimeoutSeconds == 0 {
		cfg.Storage.ConnectTimeoutSeconds = def.Storage.ConnectTimeoutSeconds
	}
	// A negative probe interval disables probing.
	if cfg.Storage.ProbeIntervalSeconds == 0 {
		cfg.Storage.ProbeIntervalSeconds = def.Storage.ProbeIntervalSeconds
	}
	if cfg.Storage.BufferCapacity == 0 {
		cfg.Storage.BufferCapacity = def.Storage.BufferCapacity
	}
	if cfg.Execution.Platform == "" {
		cfg.Execution.Platform = def.Execution.Platform
	}
	if cfg.Execution.InfoTimeoutSeconds == 0 {
		cfg.Execution.InfoTimeoutSeconds = def.Execution.InfoTimeoutSeconds
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filesystem.ExpandHome(path))
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
