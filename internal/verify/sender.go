package verify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Provider delivers a verification code to a recipient over one channel.
type Provider interface {
	Name() string
	Send(ctx context.Context, recipient, code string) error
}

// Request is one verification-code send request.
type Request struct {
	Channel   Channel `json:"type"`
	Recipient string  `json:"recipient"`
	UserID    string  `json:"user_id"`
}

// Validate reports the first problem with the request, if any.
func (r Request) Validate() error {
	if !ValidChannel(r.Channel) {
		return fmt.Errorf("unsupported channel %q", r.Channel)
	}
	if r.Recipient == "" {
		return fmt.Errorf("recipient required")
	}
	if r.UserID == "" {
		return fmt.Errorf("user_id required")
	}
	return nil
}

// DeliveryError reports that every configured provider failed.
type DeliveryError struct {
	Channel Channel
	Err     error
}

func (e DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s code: %v", e.Channel, e.Err)
}

func (e DeliveryError) Unwrap() error { return e.Err }

// Sender generates codes, persists them with an expiry, and dispatches
// delivery to a primary provider with one fallback per channel.
type Sender struct {
	store     CodeStore
	providers map[Channel][]Provider
	ttl       time.Duration
	log       *zap.Logger
	nowFn     func() time.Time
	genFn     func() (string, error)
}

// NewSender constructs a sender over the given code store. Providers are
// registered per channel via RegisterProviders.
func NewSender(store CodeStore, log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{
		store:     store,
		providers: make(map[Channel][]Provider),
		ttl:       DefaultTTL,
		log:       log,
		nowFn:     func() time.Time { return time.Now().UTC() },
		genFn:     GenerateCode,
	}
}

// RegisterProviders sets the delivery chain for a channel, primary first.
func (s *Sender) RegisterProviders(channel Channel, providers ...Provider) {
	s.providers[channel] = providers
}

// SetTTL overrides the code lifetime. Non-positive values are ignored.
func (s *Sender) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// SetNowFunc overrides the time provider for deterministic tests.
func (s *Sender) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

// SetGenerateFunc overrides code generation for deterministic tests.
func (s *Sender) SetGenerateFunc(fn func() (string, error)) {
	if fn != nil {
		s.genFn = fn
	}
}

// Send generates a fresh code for the request, stores it (replacing any prior
// code for the same user and channel), and attempts delivery through the
// channel's providers in order. The stored code is removed again if every
// provider fails, so an undeliverable code can never be confirmed.
func (s *Sender) Send(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	providers := s.providers[req.Channel]
	if len(providers) == 0 {
		return fmt.Errorf("no providers configured for channel %q", req.Channel)
	}

	codeVal, err := s.genFn()
	if err != nil {
		return err
	}
	code := Code{
		UserID:    req.UserID,
		Channel:   req.Channel,
		Code:      codeVal,
		ExpiresAt: s.nowFn().Add(s.ttl),
	}
	if err := s.store.Put(ctx, code); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	var lastErr error
	for i, provider := range providers {
		if err := provider.Send(ctx, req.Recipient, codeVal); err != nil {
			lastErr = err
			s.log.Warn("verification code delivery failed",
				zap.String("channel", string(req.Channel)),
				zap.String("provider", provider.Name()),
				zap.Bool("fallback_available", i < len(providers)-1),
				zap.Error(err))
			continue
		}
		s.log.Info("verification code sent",
			zap.String("channel", string(req.Channel)),
			zap.String("provider", provider.Name()),
			zap.String("user_id", req.UserID))
		return nil
	}
	if err := s.store.Delete(ctx, req.UserID, req.Channel); err != nil {
		s.log.Warn("cleanup of undelivered code failed", zap.Error(err))
	}
	return DeliveryError{Channel: req.Channel, Err: lastErr}
}

// Confirm checks a submitted code against the stored one and consumes it on
// success.
func (s *Sender) Confirm(ctx context.Context, userID string, channel Channel, submitted string) (bool, error) {
	stored, ok, err := s.store.Get(ctx, userID, channel)
	if err != nil {
		return false, err
	}
	if !ok || stored.Code != submitted {
		return false, nil
	}
	if err := s.store.Delete(ctx, userID, channel); err != nil {
		return false, err
	}
	return true, nil
}
