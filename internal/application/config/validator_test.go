package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/voicectl/internal/domain"
	infraconfig "github.com/doeshing/voicectl/internal/infrastructure/config"
)

func TestValidateDefaults(t *testing.T) {
	assert.NoError(t, Validate(infraconfig.Default()))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Config)
		want   string
	}{
		{"port", func(c *domain.Config) { c.Server.Port = 70000 }, "server.port"},
		{"driver", func(c *domain.Config) { c.Storage.Driver = "redis" }, "storage.driver"},
		{"mongo uri", func(c *domain.Config) { c.Storage.URI = "http://localhost" }, "storage.uri"},
		{"sqlite path", func(c *domain.Config) {
			c.Storage.Driver = domain.StorageDriverSQLite
			c.Storage.SQLitePath = ""
		}, "storage.sqlite_path"},
		{"buffer", func(c *domain.Config) { c.Storage.BufferCapacity = 0 }, "storage.buffer_capacity"},
		{"platform", func(c *domain.Config) { c.Execution.Platform = "plan9" }, "execution.platform"},
		{"rules", func(c *domain.Config) { c.Security.RulesFile = "" }, "security.rules_file"},
		{"level", func(c *domain.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"format", func(c *domain.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := infraconfig.Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestValidateMemoryDriverIgnoresURI(t *testing.T) {
	cfg := infraconfig.Default()
	cfg.Storage.Driver = domain.StorageDriverMemory
	cfg.Storage.URI = ""
	assert.NoError(t, Validate(cfg))
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := infraconfig.Default()
	cfg.Server.Port = 0
	cfg.Logging.Format = "xml"
	err := Validate(cfg)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "server.port")
		assert.Contains(t, err.Error(), "logging.format")
	}
}
