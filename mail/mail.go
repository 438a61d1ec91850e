// Package mail handles alert delivery via a pluggable provider.
package mail

import (
	"context"
	"log/slog"
)

// Provider defines the interface for mail delivery implementations.
type Provider interface {
	// Send delivers a message with the given subject and plain-text body.
	Send(ctx context.Context, subject, body string) error
}

// Sender sends keyword-match alerts using a pluggable provider.
type Sender struct {
	provider Provider
	logger   *slog.Logger
}

// New creates a new alert sender with the given provider.
func New(provider Provider, logger *slog.Logger) *Sender {
	return &Sender{
		provider: provider,
		logger:   logger,
	}
}

// SendAlert delivers one alert. Alerts are never retried: the
// orchestrator marks a listing seen regardless of delivery outcome.
func (s *Sender) SendAlert(ctx context.Context, subject, body string) error {
	s.logger.Info("Sending alert", "subject", subject, "body_length", len(body))
	return s.provider.Send(ctx, subject, body)
}
