package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Server defaults
const (
	// DefaultPort is the HTTP port used when neither config nor PORT set one
	DefaultPort = 3000
	// DefaultReadTimeout bounds reading a request
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds writing a response; informational queries need up to InfoQueryTimeout
	DefaultWriteTimeout = 30 * time.Second
)

// Storage defaults
const (
	// DefaultMongoURI is the local MongoDB endpoint
	DefaultMongoURI = "mongodb://localhost:27017"
	// DefaultDatabase is the MongoDB database name
	DefaultDatabase = "voicectl"
	// DefaultCollection holds command records
	DefaultCollection = "commands"
	// DefaultConnectTimeout bounds the startup connection attempt and the readiness wait
	DefaultConnectTimeout = 5 * time.Second
	// DefaultProbeInterval is how often a degraded store retries the persistent backend
	DefaultProbeInterval = 30 * time.Second
	// FallbackBufferCapacity is the size of the in-memory history ring
	FallbackBufferCapacity = 100
)

// Execution defaults
const (
	// InfoQueryTimeout bounds informational child processes
	InfoQueryTimeout = 10 * time.Second
	// DefaultShutdownDelaySeconds applies when a shutdown command names no duration
	DefaultShutdownDelaySeconds = 60
	// MaxShutdownDelaySeconds caps parsed delays at ten years, the largest value `shutdown /t` accepts
	MaxShutdownDelaySeconds = 315360000
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to return
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps a single history query
	MaxHistoryLimit = 1000
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
