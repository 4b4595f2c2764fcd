package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/voicectl/internal/domain"
	infraconfig "github.com/doeshing/voicectl/internal/infrastructure/config"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type stubStore struct {
	connectErr error
	closed     bool
}

func (s *stubStore) Name() string { return "stub" }
func (s *stubStore) Connect(context.Context) error { return s.connectErr }
func (s *stubStore) Ping(context.Context) error { return s.connectErr }
func (s *stubStore) DeleteAll(context.Context) error { return nil }
func (s *stubStore) Close(context.Context) error { s.closed = true; return nil }
func (s *stubStore) Insert(_ context.Context, r domain.CommandRecord) (domain.CommandRecord, error) {
	return r, nil
}
func (s *stubStore) Recent(context.Context, int) ([]domain.CommandRecord, error) { return nil, nil }

type stubCatalog []string

func (c stubCatalog) Programs(domain.Platform) []string { return c }

type stubRules struct{}

func (stubRules) RuleCount() int { return 9 }
func (stubRules) Source() string { return "defaults" }

func lookPathFor(present ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, p := range present {
			if p == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", errors.New("not found")
	}
}

func byName(report domain.HealthReport) map[string]domain.HealthCheck {
	out := map[string]domain.HealthCheck{}
	for _, c := range report.Checks {
		out[c.Name] = c
	}
	return out
}

func TestRunHealthy(t *testing.T) {
	store := &stubStore{}
	svc := &Service{
		ConfigProvider: stubConfig{cfg: infraconfig.Default()},
		Store:          store,
		Catalog:        stubCatalog{"amixer", "xdg-open"},
		Guardrail:      stubRules{},
		Platform:       domain.PlatformLinux,
		LookPath:       lookPathFor("amixer", "xdg-open"),
	}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Failed())

	checks := byName(report)
	assert.Equal(t, domain.HealthOK, checks["Config file"].Status)
	assert.Equal(t, domain.HealthOK, checks["Storage"].Status)
	assert.Equal(t, "stub reachable", checks["Storage"].Details)
	assert.Equal(t, domain.HealthOK, checks["Platform (linux)"].Status)
	assert.Equal(t, "9 rules from defaults", checks["Guardrail"].Details)
	assert.True(t, store.closed)
}

func TestRunDegraded(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: infraconfig.Default()},
		Store:          &stubStore{connectErr: errors.New("connection refused")},
		Catalog:        stubCatalog{"amixer", "sensors", "xdg-open"},
		Platform:       domain.PlatformLinux,
		LookPath:       lookPathFor("xdg-open"),
	}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Failed())

	checks := byName(report)
	assert.Equal(t, domain.HealthWarn, checks["Storage"].Status)
	assert.Contains(t, checks["Storage"].Details, "connection refused")
	assert.Equal(t, "2 of 3 programs missing: amixer, sensors", checks["Platform (linux)"].Details)
	assert.Equal(t, domain.HealthWarn, checks["Guardrail"].Status)
}

func TestRunMemoryDriver(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: infraconfig.Default()},
		Catalog:        stubCatalog{},
		Platform:       domain.PlatformGeneric,
	}
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	checks := byName(report)
	assert.Equal(t, domain.HealthWarn, checks["Storage"].Status)
	assert.Equal(t, domain.HealthWarn, checks["Platform (generic)"].Status)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := infraconfig.Default()
	cfg.Server.Port = 0
	svc := &Service{ConfigProvider: stubConfig{cfg: cfg}}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Failed())
	assert.Contains(t, byName(report)["Config file"].Details, "server.port")
}

func TestRunConfigLoadFailure(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("boom")}}
	report, err := svc.Run(context.Background())
	assert.Error(t, err)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, domain.HealthError, report.Checks[0].Status)
}
