package draft

import (
	"context"

	"sporely/pkg/domain"
)

// FormOptions carries optional inputs for NewForm.
type FormOptions struct {
	// DraftID pins the binding to a specific draft. Empty binds to whichever
	// draft is top-of-stack at call time.
	DraftID string
	// OnComplete is invoked after a successful Complete with the result.
	OnComplete func(CreationResult)
	// OnCancel is invoked after Cancel.
	OnCancel func()
}

// Form adapts a single draft (or the current top-of-stack) into the shape a
// form needs: current values, validity, and mutation callbacks. It holds no
// state of its own; every read resolves against the live stack.
type Form struct {
	stack      *Stack
	entityType domain.EntityType
	draftID    string
	onComplete func(CreationResult)
	onCancel   func()
}

// NewForm constructs a binding for the given entity type.
func NewForm(stack *Stack, entityType domain.EntityType, opts FormOptions) *Form {
	mustConfig(entityType)
	return &Form{
		stack:      stack,
		entityType: entityType,
		draftID:    opts.DraftID,
		onComplete: opts.OnComplete,
		onCancel:   opts.OnCancel,
	}
}

// resolve returns the bound draft, or false if no matching draft exists.
func (f *Form) resolve() (Entry, bool) {
	if f.draftID != "" {
		return f.stack.GetDraft(f.draftID)
	}
	return f.stack.Top()
}

// Values returns the live draft's form data, or the entity type's static
// defaults if no draft exists yet, so a form can render before StartCreation.
func (f *Form) Values() map[string]any {
	if entry, ok := f.resolve(); ok {
		return entry.FormData
	}
	cfg := mustConfig(f.entityType)
	out := make(map[string]any, len(cfg.Defaults))
	for k, v := range cfg.Defaults {
		out[k] = v
	}
	return out
}

// IsValid reports whether every required field has a present, non-empty
// value. It is recomputed from current form data on every call.
func (f *Form) IsValid() bool {
	return len(f.MissingFields()) == 0
}

// MissingFields returns the required fields that are absent or empty.
func (f *Form) MissingFields() []string {
	cfg := mustConfig(f.entityType)
	values := f.Values()
	var missing []string
	for _, field := range cfg.RequiredFields {
		if !fieldPresent(values[field]) {
			missing = append(missing, field)
		}
	}
	return missing
}

// SetField writes a single field into the bound draft. A no-op when no draft
// exists.
func (f *Form) SetField(ctx context.Context, field string, value any) {
	entry, ok := f.resolve()
	if !ok {
		return
	}
	f.stack.UpdateDraft(ctx, entry.ID, map[string]any{field: value})
}

// Complete finishes the bound draft with the given creation result, invokes
// the completion callback, and returns the resumed parent draft if any.
func (f *Form) Complete(ctx context.Context, result CreationResult) *Entry {
	entry, ok := f.resolve()
	if !ok {
		return nil
	}
	parent := f.stack.CompleteCreation(ctx, entry.ID, result)
	if f.onComplete != nil {
		f.onComplete(result)
	}
	return parent
}

// Cancel discards the bound draft (and anything stacked above it) and invokes
// the cancellation callback. Returns the resumed parent draft if any.
func (f *Form) Cancel(ctx context.Context) *Entry {
	entry, ok := f.resolve()
	if !ok {
		return nil
	}
	parent := f.stack.CancelCreation(ctx, entry.ID)
	if f.onCancel != nil {
		f.onCancel()
	}
	return parent
}

// StartNested begins creating a related entity from within this form,
// pre-wiring fieldToFill so the nested form's result is written back into the
// field that triggered it.
func (f *Form) StartNested(ctx context.Context, nestedType domain.EntityType, fieldToFill string, initial map[string]any) string {
	return f.stack.StartCreation(ctx, nestedType, StartOptions{
		FieldToFill: fieldToFill,
		InitialData: initial,
	})
}

// fieldPresent reports whether a form value counts as filled. Nil and empty
// strings do not.
func fieldPresent(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}
