package draft

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sporely/internal/statekv"
	"sporely/pkg/domain"
)

func TestStartCreationMaintainsParentChain(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()

	ids := []string{
		s.StartCreation(ctx, domain.EntityGrow, StartOptions{}),
		s.StartCreation(ctx, domain.EntityVessel, StartOptions{FieldToFill: "vessel_id"}),
		s.StartCreation(ctx, domain.EntityContainerType, StartOptions{FieldToFill: "container_type_id"}),
	}
	if s.Depth() != 3 {
		t.Fatalf("expected depth 3, got %d", s.Depth())
	}
	entries := s.Entries()
	if entries[0].ParentDraftID != "" {
		t.Fatalf("bottom entry must have no parent, got %q", entries[0].ParentDraftID)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].ParentDraftID != ids[i-1] {
			t.Fatalf("entry %d parent = %q, want %q", i, entries[i].ParentDraftID, ids[i-1])
		}
	}
}

func TestStartCreationMergesDefaultsAndInitialData(t *testing.T) {
	s := NewStack(nil, nil)
	id := s.StartCreation(context.Background(), domain.EntityCulture, StartOptions{
		InitialData: map[string]any{"label": "LC-7", "status": "used"},
	})
	entry, ok := s.GetDraft(id)
	if !ok {
		t.Fatalf("expected draft present")
	}
	if entry.FormData["label"] != "LC-7" {
		t.Fatalf("initial data not applied: %v", entry.FormData)
	}
	if entry.FormData["status"] != "used" {
		t.Fatalf("initial data must override defaults, got %v", entry.FormData["status"])
	}
	if entry.FormData["generation"] != 0 {
		t.Fatalf("defaults not seeded: %v", entry.FormData)
	}
	if entry.Label != "Culture" {
		t.Fatalf("expected default label, got %q", entry.Label)
	}
}

func TestStartCreationUnknownTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown entity type")
		}
	}()
	NewStack(nil, nil).StartCreation(context.Background(), domain.EntityType("bogus"), StartOptions{})
}

func TestNestedCompletionFillsParentField(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()

	growID := s.StartCreation(ctx, domain.EntityGrow, StartOptions{})
	vesselID := s.StartCreation(ctx, domain.EntityVessel, StartOptions{FieldToFill: "vessel_id"})
	if s.Depth() != 2 {
		t.Fatalf("expected stack [grow, vessel], depth %d", s.Depth())
	}

	parent := s.CompleteCreation(ctx, vesselID, CreationResult{ID: "v1", Name: "Quart Jar", EntityType: domain.EntityVessel})
	if parent == nil {
		t.Fatalf("expected resumed parent draft")
	}
	if parent.ID != growID {
		t.Fatalf("resumed draft = %q, want %q", parent.ID, growID)
	}
	if parent.FormData["vessel_id"] != "v1" {
		t.Fatalf("parent field not filled: %v", parent.FormData)
	}
	if s.Depth() != 1 {
		t.Fatalf("expected depth 1 after completion, got %d", s.Depth())
	}
}

func TestCompleteTopLevelReturnsNil(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	id := s.StartCreation(ctx, domain.EntityRecipe, StartOptions{})
	if parent := s.CompleteCreation(ctx, id, CreationResult{ID: "r1"}); parent != nil {
		t.Fatalf("top-level completion must return nil, got %+v", parent)
	}
	if s.Depth() != 0 {
		t.Fatalf("expected empty stack, got depth %d", s.Depth())
	}
}

func TestCompleteWithoutFieldToFillLeavesParentUntouched(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	parentID := s.StartCreation(ctx, domain.EntityGrow, StartOptions{})
	childID := s.StartCreation(ctx, domain.EntitySupplier, StartOptions{})
	before, _ := s.GetDraft(parentID)

	s.CompleteCreation(ctx, childID, CreationResult{ID: "sup-1"})
	after, _ := s.GetDraft(parentID)
	if len(after.FormData) != len(before.FormData) {
		t.Fatalf("parent form data changed: %v -> %v", before.FormData, after.FormData)
	}
}

func TestCancelMiddleTruncatesToIndex(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()

	a := s.StartCreation(ctx, domain.EntityGrow, StartOptions{})
	b := s.StartCreation(ctx, domain.EntityVessel, StartOptions{FieldToFill: "vessel_id"})
	s.StartCreation(ctx, domain.EntityContainerType, StartOptions{FieldToFill: "container_type_id"})

	resumed := s.CancelCreation(ctx, b)
	if resumed == nil || resumed.ID != a {
		t.Fatalf("expected resumed draft %q, got %+v", a, resumed)
	}
	if s.Depth() != 1 {
		t.Fatalf("expected stack truncated to [a], depth %d", s.Depth())
	}
	if _, ok := s.GetDraft(b); ok {
		t.Fatalf("cancelled draft must be removed")
	}
}

func TestCancelDefaultsToTop(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	a := s.StartCreation(ctx, domain.EntityGrow, StartOptions{})
	s.StartCreation(ctx, domain.EntityVessel, StartOptions{})

	resumed := s.CancelCreation(ctx, "")
	if resumed == nil || resumed.ID != a {
		t.Fatalf("expected top cancelled and %q resumed, got %+v", a, resumed)
	}
	if resumed = s.CancelCreation(ctx, ""); resumed != nil {
		t.Fatalf("expected nil after emptying stack, got %+v", resumed)
	}
	if resumed = s.CancelCreation(ctx, ""); resumed != nil {
		t.Fatalf("cancel on empty stack must be a no-op, got %+v", resumed)
	}
}

func TestUnknownIDOperationsAreSilentNoOps(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	id := s.StartCreation(ctx, domain.EntityStrain, StartOptions{InitialData: map[string]any{"name": "Pink Oyster"}})

	s.UpdateDraft(ctx, "nonexistent-id", map[string]any{"name": "x"})
	if s.Depth() != 1 {
		t.Fatalf("stack changed by unknown update")
	}
	entry, _ := s.GetDraft(id)
	if entry.FormData["name"] != "Pink Oyster" {
		t.Fatalf("draft mutated by unknown update: %v", entry.FormData)
	}
	if parent := s.CompleteCreation(ctx, "nonexistent-id", CreationResult{ID: "x"}); parent != nil {
		t.Fatalf("unknown completion must return nil")
	}
	if s.Depth() != 1 {
		t.Fatalf("stack changed by unknown completion")
	}
	if _, ok := s.GetDraft("nonexistent-id"); ok {
		t.Fatalf("unknown lookup must miss")
	}
}

func TestUpdateDraftShallowMerge(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	id := s.StartCreation(ctx, domain.EntityInventoryItem, StartOptions{InitialData: map[string]any{"name": "Rye"}})
	s.UpdateDraft(ctx, id, map[string]any{"unit": "kg"})
	s.UpdateDraft(ctx, id, map[string]any{"name": "Rye Grain"})

	entry, _ := s.GetDraft(id)
	if entry.FormData["name"] != "Rye Grain" || entry.FormData["unit"] != "kg" {
		t.Fatalf("merge result wrong: %v", entry.FormData)
	}
}

func TestClearAllDrafts(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	s.StartCreation(ctx, domain.EntityGrow, StartOptions{})
	s.StartCreation(ctx, domain.EntityVessel, StartOptions{})
	s.ClearAllDrafts(ctx)
	if s.Depth() != 0 {
		t.Fatalf("expected empty stack, depth %d", s.Depth())
	}
}

func TestGetDraftReturnsCopy(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	id := s.StartCreation(ctx, domain.EntityGrow, StartOptions{InitialData: map[string]any{"name": "Tub 1"}})
	entry, _ := s.GetDraft(id)
	entry.FormData["name"] = "mutated"
	again, _ := s.GetDraft(id)
	if again.FormData["name"] != "Tub 1" {
		t.Fatalf("GetDraft must return an isolated copy")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	kv := statekv.NewMemory()
	ctx := context.Background()

	s := NewStack(kv, nil)
	fixed := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	s.SetNowFunc(func() time.Time { return fixed })
	a := s.StartCreation(ctx, domain.EntityGrow, StartOptions{InitialData: map[string]any{"name": "Tub 4"}})
	b := s.StartCreation(ctx, domain.EntityVessel, StartOptions{FieldToFill: "vessel_id"})

	restored := NewStack(kv, nil)
	restored.Restore(ctx)
	if restored.Depth() != 2 {
		t.Fatalf("expected restored depth 2, got %d", restored.Depth())
	}
	entries := restored.Entries()
	if entries[0].ID != a || entries[1].ID != b {
		t.Fatalf("restored ids differ: %v", entries)
	}
	if entries[1].ParentDraftID != a {
		t.Fatalf("restored parent chain broken: %q", entries[1].ParentDraftID)
	}
	if entries[0].EntityType != domain.EntityGrow || entries[1].EntityType != domain.EntityVessel {
		t.Fatalf("restored entity types differ: %v", entries)
	}
	if entries[0].FormData["name"] != "Tub 4" {
		t.Fatalf("restored form data differs: %v", entries[0].FormData)
	}
	if !entries[0].CreatedAt.Equal(fixed) {
		t.Fatalf("restored timestamp differs: %v", entries[0].CreatedAt)
	}
}

func TestRestoreCorruptPayloadStartsEmpty(t *testing.T) {
	kv := statekv.NewMemory()
	ctx := context.Background()
	if err := kv.Put(ctx, StorageKey, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewStack(kv, nil)
	s.Restore(ctx)
	if s.Depth() != 0 {
		t.Fatalf("corrupt payload must fall back to empty, depth %d", s.Depth())
	}
}

func TestRestoreReadFailureStartsEmpty(t *testing.T) {
	s := NewStack(failingKV{}, nil)
	s.Restore(context.Background())
	if s.Depth() != 0 {
		t.Fatalf("read failure must fall back to empty, depth %d", s.Depth())
	}
}

func TestWriteFailureKeepsInMemoryStackAuthoritative(t *testing.T) {
	s := NewStack(failingKV{}, nil)
	ctx := context.Background()
	id := s.StartCreation(ctx, domain.EntityRecipe, StartOptions{InitialData: map[string]any{"name": "CVG"}})
	if s.Depth() != 1 {
		t.Fatalf("write failure must not affect in-memory stack")
	}
	s.UpdateDraft(ctx, id, map[string]any{"yield_g": float64(5000)})
	entry, ok := s.GetDraft(id)
	if !ok || entry.FormData["yield_g"] != float64(5000) {
		t.Fatalf("expected update applied despite write failure: %v ok=%v", entry.FormData, ok)
	}
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, fmt.Errorf("storage unavailable")
}
func (failingKV) Put(context.Context, string, []byte) error {
	return fmt.Errorf("storage quota exceeded")
}
func (failingKV) Delete(context.Context, string) error {
	return fmt.Errorf("storage unavailable")
}
