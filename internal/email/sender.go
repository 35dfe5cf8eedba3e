package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/newshub/newshub/internal/logging"
)

// Sender delivers one email. Implementations must be safe for concurrent
// use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Config holds Resend client settings.
type Config struct {
	APIKey    string
	FromEmail string
	Timeout   time.Duration
	// Endpoint overrides the Resend API URL. Empty means production.
	Endpoint string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		FromEmail: "NewsHub <digest@newshub.example.com>",
		Timeout:   15 * time.Second,
		Endpoint:  "https://api.resend.com/emails",
	}
}

// ResendSender sends email through the Resend HTTP API. Without an API key
// it logs the send and reports success so local environments exercise the
// full pipeline without delivering anything.
type ResendSender struct {
	config Config
	client *http.Client
	logger *logging.Logger
}

func NewResendSender(config Config, logger *logging.Logger) *ResendSender {
	if config.FromEmail == "" {
		config.FromEmail = DefaultConfig().FromEmail
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultConfig().Endpoint
	}
	return &ResendSender{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if s.config.APIKey == "" {
		s.logger.Info("email delivery skipped, no API key",
			logging.WithField("to", msg.To),
			logging.WithField("subject", msg.Subject))
		return nil
	}

	payload, err := json.Marshal(resendRequest{
		From:    s.config.FromEmail,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var out resendResponse
		_ = json.Unmarshal(body, &out)
		if out.Message != "" {
			return fmt.Errorf("resend API returned status %d: %s", resp.StatusCode, out.Message)
		}
		return fmt.Errorf("resend API returned status %d", resp.StatusCode)
	}

	return nil
}
