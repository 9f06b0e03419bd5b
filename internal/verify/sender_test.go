package verify

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeProvider struct {
	name  string
	fail  bool
	calls int
	last  string
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Send(_ context.Context, _, code string) error {
	p.calls++
	p.last = code
	if p.fail {
		return fmt.Errorf("%s unavailable", p.name)
	}
	return nil
}

func TestGenerateCodeFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
	}
}

func TestSendStoresCodeWithExpiry(t *testing.T) {
	store := NewMemoryStore()
	sender := NewSender(store, nil)
	primary := &fakeProvider{name: "primary"}
	sender.RegisterProviders(ChannelEmail, primary)
	fixed := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	sender.SetNowFunc(func() time.Time { return fixed })
	store.SetNowFunc(func() time.Time { return fixed })
	sender.SetGenerateFunc(func() (string, error) { return "123456", nil })

	ctx := context.Background()
	if err := sender.Send(ctx, Request{Channel: ChannelEmail, Recipient: "lab@example.com", UserID: "u1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if primary.calls != 1 || primary.last != "123456" {
		t.Fatalf("provider not invoked correctly: %+v", primary)
	}
	stored, ok, err := store.Get(ctx, "u1", ChannelEmail)
	if err != nil || !ok {
		t.Fatalf("expected stored code, ok=%v err=%v", ok, err)
	}
	if !stored.ExpiresAt.Equal(fixed.Add(DefaultTTL)) {
		t.Fatalf("expiry = %v, want %v", stored.ExpiresAt, fixed.Add(DefaultTTL))
	}
}

func TestSendReplacesPriorCode(t *testing.T) {
	store := NewMemoryStore()
	sender := NewSender(store, nil)
	sender.RegisterProviders(ChannelSMS, &fakeProvider{name: "primary"})
	codes := []string{"111111", "222222"}
	i := 0
	sender.SetGenerateFunc(func() (string, error) { c := codes[i]; i++; return c, nil })

	ctx := context.Background()
	req := Request{Channel: ChannelSMS, Recipient: "+15550100", UserID: "u1"}
	if err := sender.Send(ctx, req); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := sender.Send(ctx, req); err != nil {
		t.Fatalf("second send: %v", err)
	}
	stored, _, _ := store.Get(ctx, "u1", ChannelSMS)
	if stored.Code != "222222" {
		t.Fatalf("expected latest code stored, got %q", stored.Code)
	}
	if ok, _ := sender.Confirm(ctx, "u1", ChannelSMS, "111111"); ok {
		t.Fatalf("replaced code must not confirm")
	}
}

func TestSendFallsBackToSecondaryProvider(t *testing.T) {
	store := NewMemoryStore()
	sender := NewSender(store, nil)
	primary := &fakeProvider{name: "primary", fail: true}
	fallback := &fakeProvider{name: "fallback"}
	sender.RegisterProviders(ChannelEmail, primary, fallback)

	if err := sender.Send(context.Background(), Request{Channel: ChannelEmail, Recipient: "a@b.c", UserID: "u1"}); err != nil {
		t.Fatalf("expected fallback delivery, got %v", err)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("expected both providers tried: primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestSendAllProvidersFailRemovesCode(t *testing.T) {
	store := NewMemoryStore()
	sender := NewSender(store, nil)
	sender.RegisterProviders(ChannelEmail, &fakeProvider{name: "primary", fail: true}, &fakeProvider{name: "fallback", fail: true})

	ctx := context.Background()
	err := sender.Send(ctx, Request{Channel: ChannelEmail, Recipient: "a@b.c", UserID: "u1"})
	if err == nil {
		t.Fatalf("expected delivery error")
	}
	if _, ok := err.(DeliveryError); !ok {
		t.Fatalf("expected DeliveryError, got %T", err)
	}
	if _, ok, _ := store.Get(ctx, "u1", ChannelEmail); ok {
		t.Fatalf("undeliverable code must not remain stored")
	}
}

func TestSendRejectsInvalidRequests(t *testing.T) {
	sender := NewSender(NewMemoryStore(), nil)
	sender.RegisterProviders(ChannelEmail, &fakeProvider{name: "primary"})
	cases := []Request{
		{Channel: "pigeon", Recipient: "a@b.c", UserID: "u1"},
		{Channel: ChannelEmail, Recipient: "", UserID: "u1"},
		{Channel: ChannelEmail, Recipient: "a@b.c", UserID: ""},
	}
	for _, req := range cases {
		if err := sender.Send(context.Background(), req); err == nil {
			t.Fatalf("expected validation error for %+v", req)
		}
	}
}

func TestConfirmConsumesCode(t *testing.T) {
	store := NewMemoryStore()
	sender := NewSender(store, nil)
	sender.RegisterProviders(ChannelEmail, &fakeProvider{name: "primary"})
	sender.SetGenerateFunc(func() (string, error) { return "654321", nil })

	ctx := context.Background()
	if err := sender.Send(ctx, Request{Channel: ChannelEmail, Recipient: "a@b.c", UserID: "u1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if ok, err := sender.Confirm(ctx, "u1", ChannelEmail, "000000"); err != nil || ok {
		t.Fatalf("wrong code must not confirm: ok=%v err=%v", ok, err)
	}
	if ok, err := sender.Confirm(ctx, "u1", ChannelEmail, "654321"); err != nil || !ok {
		t.Fatalf("expected confirmation: ok=%v err=%v", ok, err)
	}
	if ok, _ := sender.Confirm(ctx, "u1", ChannelEmail, "654321"); ok {
		t.Fatalf("confirmed code must be consumed")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return now })
	ctx := context.Background()
	if err := store.Put(ctx, Code{UserID: "u1", Channel: ChannelEmail, Code: "123456", ExpiresAt: now.Add(DefaultTTL)}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "u1", ChannelEmail); !ok {
		t.Fatalf("expected live code")
	}
	now = now.Add(DefaultTTL + time.Second)
	if _, ok, _ := store.Get(ctx, "u1", ChannelEmail); ok {
		t.Fatalf("expected code expired")
	}
}
