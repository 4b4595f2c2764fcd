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

// ErrInvalidRequest reports a malformed command submission.
var ErrInvalidRequest = errors.New("invalid request")

// Service processes a command and records it in history.
type Service struct {
	Processor ports.CommandProcessor
	History   ports.HistoryRepository
	Logger    ports.Logger
	Now       func() time.Time
}

// Execute validates req, processes it and persists the resulting record.
func (s *Service) Execute(ctx context.Context, req domain.ExecuteRequest) (domain.CommandRecord, error) {
	if s.Processor == nil || s.History == nil {
		return domain.CommandRecord{}, errors.New("command.Service dependencies not satisfied")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return domain.CommandRecord{}, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}
	if !req.Source.Valid() {
		return domain.CommandRecord{}, fmt.Errorf("%w: type must be %q or %q", ErrInvalidRequest, domain.SourceVoice, domain.SourceText)
	}

	outcome := s.Processor.Process(ctx, text, req.Source)
	record := domain.CommandRecord{
		Text:          req.Text,
		Source:        req.Source,
		Timestamp:     s.now(),
		Status:        outcome.Status,
		Response:      outcome.Response,
		Platform:      string(s.Processor.Platform()),
		ClientContext: req.ClientContext,
	}

	saved, err := s.History.Save(ctx, record)
	if err != nil {
		s.log().Error("failed to record command", err, map[string]interface{}{"text": text})
		return record, fmt.Errorf("save command: %w", err)
	}
	return saved, nil
}

// List returns up to limit records, newest first. Non-positive limits use
// the default; large ones are capped.
func (s *Service) List(ctx context.Context, limit int) ([]domain.CommandRecord, error) {
	if s.History == nil {
		return nil, errors.New("command.Service dependencies not satisfied")
	}
	return s.History.List(ctx, ClampLimit(limit))
}

// Clear removes every history record.
func (s *Service) Clear(ctx context.Context) error {
	if s.History == nil {
		return errors.New("command.Service dependencies not satisfied")
	}
	return s.History.Clear(ctx)
}

// ClampLimit normalizes a requested history size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return domain.DefaultHistoryLimit
	case limit > domain.MaxHistoryLimit:
		return domain.MaxHistoryLimit
	default:
		return limit
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() ports.Logger {
	if s.Logger == nil {
		return logger.NewNop()
	}
	return s.Logger
}
