package domain

import "time"

// Source identifies how a command reached the service.
type Source string

const (
	SourceVoice Source = "voice"
	SourceText  Source = "text"
)

// Valid reports whether s is a known command source.
func (s Source) Valid() bool {
	return s == SourceVoice || s == SourceText
}

// Status is the terminal state of a processed command.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// CommandRecord captures one processed command. Records are append-only.
type CommandRecord struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Source        Source    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	Status        Status    `json:"status"`
	Response      string    `json:"response"`
	Platform      string    `json:"platform"`
	ClientContext string    `json:"userAgent,omitempty"`
}

// Outcome is the uniform result of processing one command.
type Outcome struct {
	Status   Status `json:"status"`
	Response string `json:"response"`
}

// Succeeded builds a success outcome.
func Succeeded(response string) Outcome {
	return Outcome{Status: StatusSuccess, Response: response}
}

// Failed builds an error outcome.
func Failed(response string) Outcome {
	return Outcome{Status: StatusError, Response: response}
}

// ExecuteRequest is a command submitted for processing.
type ExecuteRequest struct {
	Text          string
	Source        Source
	ClientContext string
}
