package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/doeshing/voicectl/internal/domain"
)

// Validate ensures config structure is consistent. All problems are reported together.
func Validate(cfg domain.Config) error {
	return errors.Join(
		validateServer(cfg.Server),
		validateStorage(cfg.Storage),
		validateExecution(cfg.Execution),
		validateSecurity(cfg.Security),
		validateLogging(cfg.Logging),
	)
}

func validateServer(s domain.ServerSettings) error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port)
	}
	if s.ReadTimeoutSeconds < 0 || s.WriteTimeoutSeconds < 0 {
		return errors.New("server timeouts must not be negative")
	}
	if s.HistoryLimit < 0 || s.HistoryLimit > domain.MaxHistoryLimit {
		return fmt.Errorf("server.history_limit must be between 0 and %d", domain.MaxHistoryLimit)
	}
	return nil
}

func validateStorage(s domain.StorageSettings) error {
	switch s.Driver {
	case domain.StorageDriverMongo:
		u, err := url.Parse(s.URI)
		if err != nil || (u.Scheme != "mongodb" && u.Scheme != "mongodb+srv") {
			return fmt.Errorf("storage.uri must be a mongodb:// or mongodb+srv:// URI, got %q", s.URI)
		}
		if s.Database == "" || s.Collection == "" {
			return errors.New("storage.database and storage.collection must be set")
		}
	case domain.StorageDriverSQLite:
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must be set for the sqlite driver")
		}
	case domain.StorageDriverMemory:
	default:
		return fmt.Errorf("storage.driver must be mongo|sqlite|memory, got %q", s.Driver)
	}
	if s.ConnectTimeoutSeconds <= 0 {
		return errors.New("storage.connect_timeout must be > 0")
	}
	if s.BufferCapacity <= 0 {
		return errors.New("storage.buffer_capacity must be > 0")
	}
	return nil
}

func validateExecution(e domain.ExecutionSettings) error {
	switch strings.ToLower(e.Platform) {
	case "", "auto", string(domain.PlatformDarwin), string(domain.PlatformWindows),
		string(domain.PlatformLinux), string(domain.PlatformGeneric):
	default:
		return fmt.Errorf("execution.platform must be auto|darwin|windows|linux|generic, got %q", e.Platform)
	}
	if e.InfoTimeoutSeconds <= 0 {
		return errors.New("execution.info_timeout must be > 0")
	}
	return nil
}

func validateSecurity(sec domain.SecuritySettings) error {
	if sec.Enabled && sec.RulesFile == "" {
		return errors.New("security.rules_file must be set when the guardrail is enabled")
	}
	return nil
}

func validateLogging(l domain.LoggingSettings) error {
	if _, err := zapcore.ParseLevel(strings.ToLower(l.Level)); err != nil {
		return fmt.Errorf("logging.level invalid: %w", err)
	}
	switch strings.ToLower(l.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console|json, got %q", l.Format)
	}
	return nil
}
