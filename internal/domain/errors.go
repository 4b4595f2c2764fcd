package domain

import (
	"errors"
	"fmt"
)

// ResolutionKind classifies resolver failures.
type ResolutionKind string

const (
	NotSupportedOnPlatform ResolutionKind = "not_supported_on_platform"
	UnknownAction          ResolutionKind = "unknown_action"
)

// ResolutionError reports that an intent has no invocation on a platform.
type ResolutionError struct {
	Kind     ResolutionKind
	Action   string
	Platform Platform
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s on %s: %s", e.Action, e.Platform, e.Kind)
}

// ExecutionKind classifies executor failures.
type ExecutionKind string

const (
	ExecNotFound         ExecutionKind = "not_found"
	ExecPermissionDenied ExecutionKind = "permission_denied"
	ExecTimeout          ExecutionKind = "timeout"
	ExecOther            ExecutionKind = "other"
)

// ExecutionError reports a failed host process.
type ExecutionError struct {
	Kind     ExecutionKind
	Program  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s (exit %d)", e.Program, e.Kind, e.ExitCode)
	}
	return fmt.Sprintf("%s: %s (exit %d): %v", e.Program, e.Kind, e.ExitCode, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ErrStorageUnavailable is returned by persistent stores that are not connected.
var ErrStorageUnavailable = errors.New("persistent storage unavailable")

// IsExecutionKind reports whether err is an ExecutionError of the given kind.
func IsExecutionKind(err error, kind ExecutionKind) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr) && execErr.Kind == kind
}
