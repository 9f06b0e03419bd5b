package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LogProvider records the code in the process log instead of delivering it.
// It is the default provider when no gateway is configured and the fallback
// of last resort in development setups.
type LogProvider struct {
	Channel Channel
	Log     *zap.Logger
}

// Name implements Provider.
func (p LogProvider) Name() string { return fmt.Sprintf("log-%s", p.Channel) }

// Send implements Provider.
func (p LogProvider) Send(_ context.Context, recipient, code string) error {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("verification code (log delivery)",
		zap.String("channel", string(p.Channel)),
		zap.String("recipient", recipient),
		zap.String("code", code))
	return nil
}

// WebhookProvider POSTs the code to an external delivery gateway. The gateway
// owns the actual email or SMS dispatch; any non-2xx response is a failure.
type WebhookProvider struct {
	Channel Channel
	URL     string
	Sender  string
	Client  *http.Client
}

// Name implements Provider.
func (p WebhookProvider) Name() string { return fmt.Sprintf("webhook-%s", p.Channel) }

type webhookPayload struct {
	Channel   Channel `json:"channel"`
	Sender    string  `json:"sender,omitempty"`
	Recipient string  `json:"recipient"`
	Code      string  `json:"code"`
}

// Send implements Provider.
func (p WebhookProvider) Send(ctx context.Context, recipient, code string) error {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	body, err := json.Marshal(webhookPayload{Channel: p.Channel, Sender: p.Sender, Recipient: recipient, Code: code})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}

var (
	_ Provider = LogProvider{}
	_ Provider = WebhookProvider{}
)
