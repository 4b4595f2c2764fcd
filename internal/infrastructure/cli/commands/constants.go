package commands

import "time"

// History display constants
const (
	// DefaultHistoryLimit is how many records `history list` shows
	DefaultHistoryLimit = 20
	// MaxHistoryAnalysisRecords bounds `history stats`
	MaxHistoryAnalysisRecords = 1000
	// TimestampFormat renders record times in listings
	TimestampFormat = "2006-01-02 15:04:05"
)

// Server constants
const (
	// ShutdownGracePeriod bounds draining in-flight requests on SIGINT/SIGTERM
	ShutdownGracePeriod = 10 * time.Second
)

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrHistoryStoreUnavailable  = "history store unavailable"
	ErrOutRequired              = "--out is required"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
	MsgHistoryCleared           = "History cleared."
)
