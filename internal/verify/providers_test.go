package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookProviderPostsPayload(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := WebhookProvider{Channel: ChannelEmail, URL: srv.URL, Sender: "lab@sporely.local"}
	if err := p.Send(context.Background(), "grower@example.com", "123456"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.Recipient != "grower@example.com" || got.Code != "123456" || got.Channel != ChannelEmail {
		t.Fatalf("payload = %+v", got)
	}
}

func TestWebhookProviderRejectsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := WebhookProvider{Channel: ChannelSMS, URL: srv.URL}
	if err := p.Send(context.Background(), "+15550100", "123456"); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}

func TestLogProviderNeverFails(t *testing.T) {
	p := LogProvider{Channel: ChannelEmail}
	if err := p.Send(context.Background(), "grower@example.com", "123456"); err != nil {
		t.Fatalf("send: %v", err)
	}
}
