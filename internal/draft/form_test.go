package draft

import (
	"context"
	"reflect"
	"testing"

	"sporely/pkg/domain"
)

func TestFormValuesFallBackToDefaults(t *testing.T) {
	s := NewStack(nil, nil)
	form := NewForm(s, domain.EntityCulture, FormOptions{})
	values := form.Values()
	if values["status"] != string(domain.CultureStatusActive) {
		t.Fatalf("expected defaults before any draft exists, got %v", values)
	}
	if form.IsValid() {
		t.Fatalf("defaults alone must not satisfy required fields")
	}
}

func TestFormValidityTracksRequiredFields(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	id := s.StartCreation(ctx, domain.EntityInventoryItem, StartOptions{})
	form := NewForm(s, domain.EntityInventoryItem, FormOptions{DraftID: id})

	if form.IsValid() {
		t.Fatalf("expected invalid with no required fields set")
	}
	missing := form.MissingFields()
	if !reflect.DeepEqual(missing, []string{"name", "unit"}) {
		t.Fatalf("missing fields = %v", missing)
	}

	form.SetField(ctx, "name", "Coco Coir")
	if form.IsValid() {
		t.Fatalf("one required field still missing")
	}
	if got := form.MissingFields(); !reflect.DeepEqual(got, []string{"unit"}) {
		t.Fatalf("missing fields = %v", got)
	}

	form.SetField(ctx, "unit", "brick")
	if !form.IsValid() {
		t.Fatalf("all required fields set, expected valid")
	}
	if got := form.MissingFields(); got != nil {
		t.Fatalf("expected no missing fields, got %v", got)
	}
}

func TestFormEmptyAndNilValuesCountAsMissing(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	id := s.StartCreation(ctx, domain.EntityStrain, StartOptions{InitialData: map[string]any{
		"name":    "",
		"species": nil,
	}})
	form := NewForm(s, domain.EntityStrain, FormOptions{DraftID: id})
	if got := form.MissingFields(); !reflect.DeepEqual(got, []string{"name", "species"}) {
		t.Fatalf("missing fields = %v", got)
	}
	s.UpdateDraft(ctx, id, map[string]any{"name": "Chestnut", "species": "Pholiota adiposa"})
	if !form.IsValid() {
		t.Fatalf("expected valid after filling fields")
	}
}

func TestFormNestedCreationScenario(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()

	growID := s.StartCreation(ctx, domain.EntityGrow, StartOptions{InitialData: map[string]any{"name": "Monotub 2"}})
	growForm := NewForm(s, domain.EntityGrow, FormOptions{DraftID: growID})

	nestedID := growForm.StartNested(ctx, domain.EntityVessel, "vessel_id", map[string]any{"name": "Quart Jar"})
	if top, _ := s.Top(); top.ID != nestedID {
		t.Fatalf("nested draft must become top-of-stack")
	}

	var completed CreationResult
	vesselForm := NewForm(s, domain.EntityVessel, FormOptions{
		OnComplete: func(r CreationResult) { completed = r },
	})
	parent := vesselForm.Complete(ctx, CreationResult{ID: "v1", Name: "Quart Jar", EntityType: domain.EntityVessel})
	if parent == nil || parent.ID != growID {
		t.Fatalf("expected grow draft resumed, got %+v", parent)
	}
	if parent.FormData["vessel_id"] != "v1" {
		t.Fatalf("vessel id not written back: %v", parent.FormData)
	}
	if completed.ID != "v1" {
		t.Fatalf("completion callback not invoked: %+v", completed)
	}
}

func TestFormCancelInvokesCallback(t *testing.T) {
	s := NewStack(nil, nil)
	ctx := context.Background()
	growID := s.StartCreation(ctx, domain.EntityGrow, StartOptions{})
	s.StartCreation(ctx, domain.EntitySupplier, StartOptions{FieldToFill: "supplier_id"})

	cancelled := false
	form := NewForm(s, domain.EntitySupplier, FormOptions{OnCancel: func() { cancelled = true }})
	parent := form.Cancel(ctx)
	if !cancelled {
		t.Fatalf("cancel callback not invoked")
	}
	if parent == nil || parent.ID != growID {
		t.Fatalf("expected grow draft resumed, got %+v", parent)
	}
}

func TestFormSetFieldWithoutDraftIsNoOp(t *testing.T) {
	s := NewStack(nil, nil)
	form := NewForm(s, domain.EntityRecipe, FormOptions{})
	form.SetField(context.Background(), "name", "PF Tek")
	if s.Depth() != 0 {
		t.Fatalf("SetField must not create drafts")
	}
}
