package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/voicectl/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell utilities")
	}
}

func sh(script string) domain.Invocation {
	return domain.Invocation{Action: "test", Program: "sh", Args: []string{"-c", script}}
}

func requireKind(t *testing.T, err error, kind domain.ExecutionKind) *domain.ExecutionError {
	t.Helper()
	var execErr *domain.ExecutionError
	require.True(t, errors.As(err, &execErr), "expected ExecutionError, got %v", err)
	assert.Equal(t, kind, execErr.Kind)
	return execErr
}

func TestExecuteCapturesOutput(t *testing.T) {
	skipOnWindows(t)
	e := NewLocalExecutor(nil)

	out, err := e.Execute(context.Background(), sh("echo hello; echo oops >&2"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.Stdout)
	assert.Equal(t, "oops\n", out.Stderr)
	assert.False(t, out.UsedFallback)
	assert.GreaterOrEqual(t, out.DurationMS, int64(0))
}

func TestExecuteTruncatesToOutputLimit(t *testing.T) {
	skipOnWindows(t)
	e := NewLocalExecutor(nil)

	inv := sh("printf abcdefghij")
	inv.OutputLimit = 4
	out, err := e.Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, "abcd", out.Stdout)
}

func TestExecuteMissingBinary(t *testing.T) {
	e := NewLocalExecutor(nil)

	_, err := e.Execute(context.Background(), domain.Invocation{Program: "voicectl-definitely-missing-binary"})
	requireKind(t, err, domain.ExecNotFound)
	assert.True(t, domain.IsExecutionKind(err, domain.ExecNotFound))
}

func TestExecuteExitCodes(t *testing.T) {
	skipOnWindows(t)
	e := NewLocalExecutor(nil)

	tests := []struct {
		script string
		kind   domain.ExecutionKind
		code   int
	}{
		{"exit 127", domain.ExecNotFound, 127},
		{"exit 126", domain.ExecPermissionDenied, 126},
		{"echo 'Operation not permitted' >&2; exit 1", domain.ExecPermissionDenied, 1},
		{"exit 3", domain.ExecOther, 3},
	}
	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			_, err := e.Execute(context.Background(), sh(tt.script))
			execErr := requireKind(t, err, tt.kind)
			assert.Equal(t, tt.code, execErr.ExitCode)
		})
	}
}

func TestExecuteNonExecutableFile(t *testing.T) {
	skipOnWindows(t)
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o600))

	_, err := NewLocalExecutor(nil).Execute(context.Background(), domain.Invocation{Program: path})
	requireKind(t, err, domain.ExecPermissionDenied)
}

func TestExecuteTimeout(t *testing.T) {
	skipOnWindows(t)
	e := NewLocalExecutor(nil)

	inv := domain.Invocation{Program: "sleep", Args: []string{"5"}, Timeout: 100 * time.Millisecond}
	start := time.Now()
	_, err := e.Execute(context.Background(), inv)
	requireKind(t, err, domain.ExecTimeout)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExecuteIgnoresCallerCancellation(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := NewLocalExecutor(nil).Execute(ctx, sh("echo still-ran"))
	require.NoError(t, err)
	assert.Equal(t, "still-ran\n", out.Stdout)
}

func TestExecuteFallback(t *testing.T) {
	skipOnWindows(t)
	e := NewLocalExecutor(nil)

	fallback := sh("echo web")
	inv := domain.Invocation{Action: "whatsapp:call", Program: "voicectl-missing-native-client", Fallback: &fallback}
	out, err := e.Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, out.UsedFallback)
	assert.Equal(t, "web\n", out.Stdout)
}

func TestExecuteFallbackFailureReportsPrimaryError(t *testing.T) {
	skipOnWindows(t)
	e := NewLocalExecutor(nil)

	fallback := sh("exit 4")
	inv := domain.Invocation{Program: "voicectl-missing-native-client", Fallback: &fallback}
	_, err := e.Execute(context.Background(), inv)
	requireKind(t, err, domain.ExecNotFound)
}

func TestExecuteSuccessSkipsFallback(t *testing.T) {
	skipOnWindows(t)
	fallback := sh("echo web")
	inv := sh("echo native")
	inv.Fallback = &fallback

	out, err := NewLocalExecutor(nil).Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.False(t, out.UsedFallback)
	assert.Equal(t, "native\n", out.Stdout)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "unbounded", Truncate("unbounded", 0))
	assert.Equal(t, "", Truncate("", 3))
}
