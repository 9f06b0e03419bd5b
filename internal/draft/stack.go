package draft

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sporely/internal/statekv"
	"sporely/pkg/domain"
)

// StorageKey is the fixed key under which the serialized stack is stored.
const StorageKey = "draft-stack"

// Entry is one pending entity-creation operation on the stack.
type Entry struct {
	ID            string            `json:"id"`
	EntityType    domain.EntityType `json:"entity_type"`
	FormData      map[string]any    `json:"form_data"`
	FieldToFill   string            `json:"field_to_fill,omitempty"`
	ParentDraftID string            `json:"parent_draft_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Label         string            `json:"label"`
}

// StartOptions carries optional inputs for StartCreation.
type StartOptions struct {
	// FieldToFill names the field on the parent draft that receives the new
	// entity's ID when this draft completes. Empty for top-level creations.
	FieldToFill string
	// InitialData is merged over the entity type's defaults.
	InitialData map[string]any
	// Label overrides the display label (defaults to the entity type's label).
	Label string
}

// CreationResult describes the record produced by the external creation call
// that consumed a completed draft.
type CreationResult struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	EntityType domain.EntityType `json:"entity_type"`
}

// Stack owns the ordered list of draft entries. The last entry is the draft
// currently being edited; entries below it are suspended parents. Every entry
// after the first links to the entry directly below it via ParentDraftID.
//
// Each mutation is followed by a serialization to the configured KV. Write
// failures are logged and swallowed: the in-memory stack stays authoritative
// for the session and a failed write only risks losing state on restart.
type Stack struct {
	mu      sync.Mutex
	entries []Entry
	kv      statekv.KV
	log     *zap.Logger
	newID   func() string
	nowFn   func() time.Time
}

// NewStack constructs an empty stack persisting to kv. A nil logger disables
// logging; a nil kv disables persistence.
func NewStack(kv statekv.KV, log *zap.Logger) *Stack {
	if log == nil {
		log = zap.NewNop()
	}
	return &Stack{
		kv:    kv,
		log:   log,
		newID: uuid.NewString,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the time provider for deterministic tests.
func (s *Stack) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

type persistedStack struct {
	Entries []Entry `json:"entries"`
}

// Restore loads any previously serialized stack from storage. Read or decode
// failures are logged and leave the stack empty.
func (s *Stack) Restore(ctx context.Context) {
	if s.kv == nil {
		return
	}
	payload, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.log.Warn("draft stack restore failed, starting empty", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var stored persistedStack
	if err := json.Unmarshal(payload, &stored); err != nil {
		s.log.Warn("draft stack payload corrupt, starting empty", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.entries = stored.Entries
	s.mu.Unlock()
}

// persist serializes the stack to storage. Failures are logged and swallowed.
func (s *Stack) persist(ctx context.Context) {
	if s.kv == nil {
		return
	}
	payload, err := json.Marshal(persistedStack{Entries: s.entries})
	if err != nil {
		s.log.Warn("draft stack encode failed", zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, StorageKey, payload); err != nil {
		s.log.Warn("draft stack write failed", zap.Error(err))
	}
}

// StartCreation pushes a new draft whose form data is the entity type's
// defaults merged with any caller-supplied initial values, linked to the
// current top-of-stack as its parent. Returns the new draft's ID.
func (s *Stack) StartCreation(ctx context.Context, entityType domain.EntityType, opts StartOptions) string {
	cfg := mustConfig(entityType)

	s.mu.Lock()
	defer s.mu.Unlock()

	formData := make(map[string]any, len(cfg.Defaults)+len(opts.InitialData))
	for k, v := range cfg.Defaults {
		formData[k] = v
	}
	for k, v := range opts.InitialData {
		formData[k] = v
	}

	label := opts.Label
	if label == "" {
		label = cfg.Label
	}

	entry := Entry{
		ID:          s.newID(),
		EntityType:  entityType,
		FormData:    formData,
		FieldToFill: opts.FieldToFill,
		CreatedAt:   s.nowFn(),
		Label:       label,
	}
	if n := len(s.entries); n > 0 {
		entry.ParentDraftID = s.entries[n-1].ID
	}
	s.entries = append(s.entries, entry)
	s.persist(ctx)
	return entry.ID
}

// UpdateDraft shallow-merges fields into the matching draft's form data.
// Unknown IDs are a stale-reference condition and are silently ignored.
func (s *Stack) UpdateDraft(ctx context.Context, draftID string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(draftID)
	if idx < 0 {
		return
	}
	entry := s.entries[idx]
	if entry.FormData == nil {
		entry.FormData = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		entry.FormData[k] = v
	}
	s.entries[idx] = entry
	s.persist(ctx)
}

// CompleteCreation removes the draft with the given ID and everything above
// it. If the draft has both a parent and a FieldToFill, the parent's form
// data receives the created record's ID under that field. Returns the
// resumed parent draft, or nil if the completed draft was top-level or the
// ID is unknown.
func (s *Stack) CompleteCreation(ctx context.Context, draftID string, result CreationResult) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(draftID)
	if idx < 0 {
		return nil
	}
	fieldToFill := s.entries[idx].FieldToFill
	s.truncate(ctx, idx, func(parent *Entry) {
		if fieldToFill == "" {
			return
		}
		if parent.FormData == nil {
			parent.FormData = make(map[string]any, 1)
		}
		parent.FormData[fieldToFill] = result.ID
	})
	return s.topLocked()
}

// CancelCreation removes the draft with the given ID and everything above it,
// discarding any deeper nested creations. An empty ID targets the current
// top-of-stack. Returns the new top-of-stack, or nil if the stack is empty.
func (s *Stack) CancelCreation(ctx context.Context, draftID string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draftID == "" {
		if len(s.entries) == 0 {
			return nil
		}
		draftID = s.entries[len(s.entries)-1].ID
	}
	idx := s.indexOf(draftID)
	if idx < 0 {
		return s.topLocked()
	}
	s.truncate(ctx, idx, nil)
	return s.topLocked()
}

// GetDraft returns a copy of the draft with the given ID.
func (s *Stack) GetDraft(draftID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(draftID)
	if idx < 0 {
		return Entry{}, false
	}
	return cloneEntry(s.entries[idx]), true
}

// ClearAllDrafts empties the stack unconditionally.
func (s *Stack) ClearAllDrafts(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.persist(ctx)
}

// Depth returns the number of entries on the stack.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Top returns a copy of the current top-of-stack draft.
func (s *Stack) Top() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	top := s.topLocked()
	if top == nil {
		return Entry{}, false
	}
	return *top, true
}

// Entries returns a copy of the stack from bottom to top.
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// truncate removes entries [idx, end), optionally patching the new top. It is
// the single removal path shared by complete and cancel, so the stack never
// contains a gap and the ParentDraftID chain always holds for the prefix.
// Callers must hold s.mu.
func (s *Stack) truncate(ctx context.Context, idx int, patch func(*Entry)) {
	if idx < 0 || idx > len(s.entries) {
		return
	}
	s.entries = s.entries[:idx]
	if patch != nil && len(s.entries) > 0 {
		patch(&s.entries[len(s.entries)-1])
	}
	s.persist(ctx)
}

func (s *Stack) indexOf(draftID string) int {
	for i, e := range s.entries {
		if e.ID == draftID {
			return i
		}
	}
	return -1
}

func (s *Stack) topLocked() *Entry {
	if len(s.entries) == 0 {
		return nil
	}
	top := cloneEntry(s.entries[len(s.entries)-1])
	return &top
}

func cloneEntry(e Entry) Entry {
	cp := e
	cp.FormData = make(map[string]any, len(e.FormData))
	for k, v := range e.FormData {
		cp.FormData[k] = v
	}
	return cp
}
