// Package sendgrid delivers run reports by email through the SendGrid v3
// mail send API.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"GoldenTickets/internal/ports"
)

const defaultBaseURL = "https://api.sendgrid.com"

// Config carries credentials and addressing for the notifier.
type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	To        []string
	Timeout   time.Duration
}

// EmailAddress is the SendGrid address object.
type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             EmailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Categories       []string          `json:"categories,omitempty"`
}

type personalization struct {
	To []EmailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Message)
}

// Notifier implements ports.Notifier over SendGrid.
type Notifier struct {
	cfg    Config
	client *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// New validates cfg and returns a notifier.
func New(cfg Config) (*Notifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid: missing api key")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("sendgrid: missing from email")
	}
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("sendgrid: no recipients")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Notifier{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// PublishReport sends the report as a plain-text email to all recipients.
func (n *Notifier) PublishReport(ctx context.Context, subject, body string) error {
	to := make([]EmailAddress, 0, len(n.cfg.To))
	for _, addr := range n.cfg.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, EmailAddress{Email: addr})
		}
	}

	wire := mailSendRequest{
		Personalizations: []personalization{{To: to}},
		From:             EmailAddress{Email: n.cfg.FromEmail, Name: n.cfg.FromName},
		Subject:          strings.TrimSpace(subject),
		Content:          []mailContent{{Type: "text/plain", Value: body}},
		Categories:       []string{"golden-tickets"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(wire); err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.BaseURL+"/v3/mail/send", &buf)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 && er.Errors[0].Message != "" {
			msg = er.Errors[0].Message
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
	}

	return nil
}
