// Package executor spawns host processes for resolved invocations.
package executor

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/pkg/logger"
	"github.com/doeshing/voicectl/internal/ports"
)

// waitDelay bounds how long Run waits for output pipes after the process is killed.
const waitDelay = 2 * time.Second

// LocalExecutor runs invocations directly on the host, one process per call.
type LocalExecutor struct {
	logger ports.Logger
}

// NewLocalExecutor builds an executor. A nil logger discards output.
func NewLocalExecutor(log ports.Logger) *LocalExecutor {
	if log == nil {
		log = logger.NewNop()
	}
	return &LocalExecutor{logger: log}
}

// Execute implements ports.ActionExecutor. When the primary process fails and
// the invocation carries a fallback, the fallback runs once; its failure
// reports the primary error.
func (e *LocalExecutor) Execute(ctx context.Context, inv domain.Invocation) (domain.ExecutionOutput, error) {
	out, err := e.run(ctx, inv)
	if err == nil || inv.Fallback == nil {
		return out, err
	}

	e.logger.Warn("native invocation failed, trying fallback", map[string]interface{}{
		"action":   inv.Action,
		"program":  inv.Program,
		"fallback": inv.Fallback.CommandLine(),
		"error":    err.Error(),
	})
	fbOut, fbErr := e.run(ctx, *inv.Fallback)
	if fbErr != nil {
		e.logger.Error("fallback invocation failed", fbErr, map[string]interface{}{"action": inv.Action})
		return out, err
	}
	fbOut.UsedFallback = true
	return fbOut, nil
}

func (e *LocalExecutor) run(ctx context.Context, inv domain.Invocation) (domain.ExecutionOutput, error) {
	// Started processes run to completion or timeout; callers cannot abort them.
	runCtx := context.WithoutCancel(ctx)
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, inv.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, inv.Program, inv.Args...)
	c.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	duration := time.Since(start).Milliseconds()

	out := domain.ExecutionOutput{
		Stdout:     Truncate(stdout.String(), inv.OutputLimit),
		Stderr:     Truncate(stderr.String(), inv.OutputLimit),
		DurationMS: duration,
	}
	e.logger.Debug("invocation finished", map[string]interface{}{
		"action":      inv.Action,
		"command":     inv.CommandLine(),
		"duration_ms": duration,
		"ok":          err == nil,
	})
	if err != nil {
		return out, classify(runCtx, inv.Program, err, stderr.String())
	}
	return out, nil
}

// classify maps a process failure onto an ExecutionError kind.
func classify(ctx context.Context, program string, err error, stderr string) *domain.ExecutionError {
	execErr := &domain.ExecutionError{Kind: domain.ExecOther, Program: program, ExitCode: -1, Stderr: strings.TrimSpace(stderr), Err: err}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		execErr.Kind = domain.ExecTimeout
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		execErr.Kind = domain.ExecNotFound
	case errors.Is(err, fs.ErrPermission):
		execErr.Kind = domain.ExecPermissionDenied
	case errors.As(err, &exitErr):
		execErr.ExitCode = exitErr.ExitCode()
		execErr.Kind = kindFromExit(execErr.ExitCode, stderr)
	}
	return execErr
}

func kindFromExit(code int, stderr string) domain.ExecutionKind {
	lower := strings.ToLower(stderr)
	switch {
	case code == 127, strings.Contains(lower, "command not found"):
		return domain.ExecNotFound
	case code == 126, strings.Contains(lower, "permission denied"), strings.Contains(lower, "operation not permitted"):
		return domain.ExecPermissionDenied
	default:
		return domain.ExecOther
	}
}

// Truncate cuts s to at most limit runes. A non-positive limit keeps everything.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

var _ ports.ActionExecutor = (*LocalExecutor)(nil)
