package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/damkaswim/storefront/pkg/httpclient"
)

// Email is a single outbound message.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers outbound email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// Config holds the transactional mail API settings.
type Config struct {
	BaseURL string
	APIKey  string
	From    string
}

// HTTPSender delivers email through a transactional mail HTTP API, protected
// by a circuit breaker so a mail outage cannot pile up blocked requests.
type HTTPSender struct {
	client *httpclient.CircuitBreakerClient
	cfg    Config
	logger *slog.Logger
}

// NewHTTPSender creates a mail sender backed by the given HTTP client.
func NewHTTPSender(client *httpclient.CircuitBreakerClient, cfg Config, logger *slog.Logger) *HTTPSender {
	return &HTTPSender{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	APIKey  string `json:"api_key"`
}

// Send posts the email to the mail API.
func (s *HTTPSender) Send(ctx context.Context, email Email) error {
	payload, err := json.Marshal(sendRequest{
		From:    s.cfg.From,
		To:      email.To,
		Subject: email.Subject,
		Body:    email.Body,
		APIKey:  s.cfg.APIKey,
	})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	resp, err := s.client.Post(ctx, s.cfg.BaseURL+"/v1/send", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("send mail: unexpected status %d", resp.StatusCode)
	}

	s.logger.DebugContext(ctx, "email sent",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}
