// Package command turns command text into host actions and uniform outcomes.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/pkg/logger"
	"github.com/doeshing/voicectl/internal/ports"
)

// Processor sequences classify, resolve, guard and execute for one command.
// Security is optional; every other port is required.
type Processor struct {
	Classifier   ports.IntentClassifier
	Resolver     ports.ActionResolver
	Executor     ports.ActionExecutor
	Security     ports.SecurityService
	Logger       ports.Logger
	HostPlatform domain.Platform
	Now          func() time.Time
}

// Process implements ports.CommandProcessor. It always returns an outcome.
func (p *Processor) Process(ctx context.Context, text string, source domain.Source) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.log().Error("command processing panicked", fmt.Errorf("%v", r), map[string]interface{}{"text": text})
			outcome = domain.Failed(msgGenericError)
		}
	}()

	if p.Classifier == nil || p.Resolver == nil || p.Executor == nil {
		p.log().Error("command processor dependencies not satisfied", nil, nil)
		return domain.Failed(msgGenericError)
	}

	intent, params := p.Classifier.Classify(text)
	p.log().Info("command classified", map[string]interface{}{
		"intent": string(intent),
		"source": string(source),
	})

	switch intent {
	case domain.IntentUnrecognized:
		return domain.Failed(guidanceMessage())
	case domain.IntentGetTime:
		return domain.Succeeded(successMarker + "It's " + p.now().Format("3:04 PM"))
	case domain.IntentGetDate:
		return domain.Succeeded(successMarker + "Today is " + p.now().Format("Monday, January 2, 2006"))
	}

	out, err := p.run(ctx, intent, params)
	if err != nil {
		return domain.Failed(failureMessage(intent, params, err))
	}
	return domain.Succeeded(successMessage(intent, params, out))
}

// Info runs an informational query without classification. Execution and
// resolution failures are rendered into the returned text; err is reserved
// for intents that are not informational.
func (p *Processor) Info(ctx context.Context, intent domain.Intent) (info string, err error) {
	if !intent.IsInfo() {
		return "", fmt.Errorf("%s is not an informational query", intent)
	}
	defer func() {
		if r := recover(); r != nil {
			p.log().Error("info query panicked", fmt.Errorf("%v", r), map[string]interface{}{"intent": string(intent)})
			info, err = msgGenericError, nil
		}
	}()

	out, runErr := p.run(ctx, intent, domain.Params{})
	if runErr != nil {
		return failureMessage(intent, nil, runErr), nil
	}
	text := strings.TrimSpace(out.Text())
	if text == "" {
		return "No information available.", nil
	}
	return text, nil
}

// Platform implements ports.CommandProcessor.
func (p *Processor) Platform() domain.Platform {
	return p.HostPlatform
}

// errBlocked marks an invocation stopped by the guardrail.
var errBlocked = errors.New("blocked by guardrail")

func (p *Processor) run(ctx context.Context, intent domain.Intent, params domain.Params) (domain.ExecutionOutput, error) {
	inv, err := p.Resolver.Resolve(intent, params, p.HostPlatform)
	if err != nil {
		p.log().Warn("action not resolved", map[string]interface{}{"intent": string(intent), "error": err.Error()})
		return domain.ExecutionOutput{}, err
	}

	if err := p.guard(inv); err != nil {
		return domain.ExecutionOutput{}, err
	}

	out, err := p.Executor.Execute(ctx, inv)
	if err != nil {
		p.log().Warn("action failed", map[string]interface{}{
			"action":  inv.Action,
			"command": inv.CommandLine(),
			"error":   err.Error(),
		})
		return out, err
	}
	return out, nil
}

func (p *Processor) guard(inv domain.Invocation) error {
	if p.Security == nil {
		return nil
	}
	check := []domain.Invocation{inv}
	if inv.Fallback != nil {
		check = append(check, *inv.Fallback)
	}
	for _, candidate := range check {
		risk, err := p.Security.Evaluate(candidate.CommandLine())
		if err != nil {
			return fmt.Errorf("security evaluate: %w", err)
		}
		switch risk.Action {
		case domain.ActionBlock:
			p.log().Warn("invocation blocked", map[string]interface{}{
				"command": candidate.CommandLine(),
				"reasons": strings.Join(risk.Reasons, "; "),
			})
			return &domain.ExecutionError{Kind: domain.ExecPermissionDenied, Program: candidate.Program, ExitCode: -1, Err: errBlocked}
		case domain.ActionWarn:
			p.log().Info("guardrail warning", map[string]interface{}{
				"command": candidate.CommandLine(),
				"level":   string(risk.Level),
				"reasons": strings.Join(risk.Reasons, "; "),
			})
		}
	}
	return nil
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Processor) log() ports.Logger {
	if p.Logger == nil {
		return logger.NewNop()
	}
	return p.Logger
}

var _ ports.CommandProcessor = (*Processor)(nil)
