package mail

import (
	"context"
	"log/slog"
)

// MockProvider is a mock mail provider for local development.
type MockProvider struct {
	logger *slog.Logger
}

// NewMockProvider creates a new mock mail provider.
func NewMockProvider(logger *slog.Logger) *MockProvider {
	return &MockProvider{
		logger: logger,
	}
}

// Send logs the message instead of delivering it.
func (m *MockProvider) Send(ctx context.Context, subject, body string) error {
	m.logger.Info("MOCK MAIL",
		"subject", subject,
		"body_length", len(body))
	return nil
}
