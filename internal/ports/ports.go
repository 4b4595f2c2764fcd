// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the command pipeline and its
// adapters (infrastructure). The application packages depend only on these
// interfaces, so the host-facing pieces (process spawning, MongoDB, SQLite,
// HTTP) can be swapped or stubbed without touching dispatch logic.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., ActionExecutor, HistoryRepository)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/voicectl/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.voicectl/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// IntentClassifier maps raw command text onto exactly one intent.
type IntentClassifier interface {
	Classify(text string) (domain.Intent, domain.Params)
}

// ActionResolver turns an intent into a concrete host invocation for a platform.
type ActionResolver interface {
	Resolve(intent domain.Intent, params domain.Params, platform domain.Platform) (domain.Invocation, error)
}

// ActionExecutor runs a single host process. It is the only seam that touches the host.
type ActionExecutor interface {
	Execute(ctx context.Context, inv domain.Invocation) (domain.ExecutionOutput, error)
}

// SecurityService evaluates rendered invocations against guardrail rules.
type SecurityService interface {
	Evaluate(command string) (domain.RiskAssessment, error)
}

// CommandProcessor turns command text into an outcome. It never fails.
type CommandProcessor interface {
	Process(ctx context.Context, text string, source domain.Source) domain.Outcome
	Info(ctx context.Context, intent domain.Intent) (string, error)
	Platform() domain.Platform
}

// HistoryRepository records processed commands and serves history queries.
type HistoryRepository interface {
	Save(ctx context.Context, record domain.CommandRecord) (domain.CommandRecord, error)
	List(ctx context.Context, limit int) ([]domain.CommandRecord, error)
	Clear(ctx context.Context) error
}

// PersistentStore is a durable backend behind the history failover layer.
type PersistentStore interface {
	Name() string
	Connect(ctx context.Context) error
	Ping(ctx context.Context) error
	Insert(ctx context.Context, record domain.CommandRecord) (domain.CommandRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.CommandRecord, error)
	DeleteAll(ctx context.Context) error
	Close(ctx context.Context) error
}

// ConnectivityNotifier is implemented by stores that can signal connection loss and regain.
type ConnectivityNotifier interface {
	OnConnectivityChange(func(up bool))
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
