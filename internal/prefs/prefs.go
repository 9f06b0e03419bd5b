// Package prefs stores the user preference document produced by the
// onboarding wizard. It shares the durable key-value store with the draft
// stack, under its own fixed key.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"

	"sporely/internal/statekv"
)

// StorageKey is the fixed key under which the document is stored.
const StorageKey = "preferences"

// Preferences is the onboarding output: lab-wide defaults applied when
// records are drafted.
type Preferences struct {
	DefaultLocationID  string `json:"default_location_id,omitempty"`
	DefaultUnits       string `json:"default_units,omitempty"`
	OnboardingComplete bool   `json:"onboarding_complete"`
}

// Store reads and writes the preference document.
type Store struct {
	kv statekv.KV
}

// NewStore constructs a preference store over kv.
func NewStore(kv statekv.KV) *Store {
	return &Store{kv: kv}
}

// Load returns the stored document, or the zero document when none exists.
func (s *Store) Load(ctx context.Context) (Preferences, error) {
	payload, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	if !ok {
		return Preferences{}, nil
	}
	var p Preferences
	if err := json.Unmarshal(payload, &p); err != nil {
		return Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return p, nil
}

// Save replaces the stored document.
func (s *Store) Save(ctx context.Context, p Preferences) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, StorageKey, payload); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
