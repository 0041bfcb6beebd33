package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

const (
	signatureHeader = "X-Portaria-Signature"
	eventHeader     = "X-Portaria-Event"
)

// Sender posts one signed payload.
type Sender struct {
	url    string
	secret string
	client *http.Client
}

func NewSender(cfg Config) *Sender {
	return &Sender{
		url:    cfg.URL,
		secret: cfg.Secret,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *Sender) Send(ctx context.Context, eventType string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(eventHeader, eventType)
	req.Header.Set("User-Agent", "Portaria-Webhook/1.0")
	if s.secret != "" {
		req.Header.Set(signatureHeader, Sign(s.secret, payload))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("deliver webhook: HTTP %d", resp.StatusCode)
	}
	return nil
}
