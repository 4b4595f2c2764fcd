package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	configapp "github.com/doeshing/voicectl/internal/application/config"
	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/ports"
)

// ProgramCatalog lists the executables a platform's action table depends on.
type ProgramCatalog interface {
	Programs(platform domain.Platform) []string
}

// RuleSet describes a loaded guardrail.
type RuleSet interface {
	RuleCount() int
	Source() string
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Store          ports.PersistentStore
	Catalog        ProgramCatalog
	Guardrail      RuleSet
	Platform       domain.Platform
	ConnectTimeout time.Duration
	LookPath       func(file string) (string, error)
}

// Run executes checks and returns a report. The error is non-nil only when
// the configuration itself cannot be loaded.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", strings.ReplaceAll(err.Error(), "\n", "; ")))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("valid (format v%s)", cfg.ConfigFormatVersion)))
	}

	checks = append(checks, s.storageCheck(ctx))
	checks = append(checks, s.platformCheck())

	if s.Guardrail != nil {
		checks = append(checks, ok("Guardrail", fmt.Sprintf("%d rules from %s", s.Guardrail.RuleCount(), s.Guardrail.Source())))
	} else {
		checks = append(checks, warn("Guardrail", "disabled"))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) storageCheck(ctx context.Context) domain.HealthCheck {
	if s.Store == nil {
		return warn("Storage", "memory driver, history is lost on restart")
	}
	timeout := s.ConnectTimeout
	if timeout <= 0 {
		timeout = domain.DefaultConnectTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Store.Connect(connectCtx); err != nil {
		return warn("Storage", fmt.Sprintf("%s unreachable, history will be kept in memory: %v", s.Store.Name(), err))
	}
	defer s.Store.Close(context.WithoutCancel(ctx))
	return ok("Storage", fmt.Sprintf("%s reachable", s.Store.Name()))
}

func (s *Service) platformCheck() domain.HealthCheck {
	name := fmt.Sprintf("Platform (%s)", s.Platform)
	if s.Catalog == nil {
		return warn(name, "no action table loaded")
	}
	programs := s.Catalog.Programs(s.Platform)
	if len(programs) == 0 {
		return warn(name, "no host actions available")
	}

	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var missing []string
	for _, program := range programs {
		if _, err := lookPath(program); err != nil {
			missing = append(missing, program)
		}
	}
	if len(missing) > 0 {
		return warn(name, fmt.Sprintf("%d of %d programs missing: %s", len(missing), len(programs), strings.Join(missing, ", ")))
	}
	return ok(name, fmt.Sprintf("%d programs available", len(programs)))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
