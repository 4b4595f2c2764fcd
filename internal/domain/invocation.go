package domain

import (
	"strings"
	"time"
)

// Platform identifies the host operating system family.
type Platform string

const (
	PlatformDarwin  Platform = "darwin"
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformGeneric Platform = "generic"
)

// PlatformFromGOOS maps a runtime.GOOS value onto a known platform.
func PlatformFromGOOS(goos string) Platform {
	switch Platform(goos) {
	case PlatformDarwin, PlatformWindows, PlatformLinux:
		return Platform(goos)
	default:
		return PlatformGeneric
	}
}

// Invocation is a concrete host process produced by the resolver.
type Invocation struct {
	Action      string
	Program     string
	Args        []string
	Timeout     time.Duration
	OutputLimit int
	Fallback    *Invocation
}

// CommandLine renders the invocation for logging and guardrail checks.
func (i Invocation) CommandLine() string {
	parts := append([]string{i.Program}, i.Args...)
	return strings.Join(parts, " ")
}

// ExecutionOutput is the captured result of a successful invocation.
type ExecutionOutput struct {
	Stdout       string
	Stderr       string
	DurationMS   int64
	UsedFallback bool
}

// Text returns stdout, or stderr when stdout is empty.
func (o ExecutionOutput) Text() string {
	if strings.TrimSpace(o.Stdout) != "" {
		return o.Stdout
	}
	return o.Stderr
}
