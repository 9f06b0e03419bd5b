package httpapi

import (
	"net/http"
	"strings"

	"sporely/internal/draft"
	"sporely/pkg/domain"
)

// DraftsHandler provides HTTP access to the nested entity-creation stack.
type DraftsHandler struct {
	Stack *draft.Stack
}

// NewDraftsHandler constructs a draft stack HTTP handler.
func NewDraftsHandler(stack *draft.Stack) *DraftsHandler {
	return &DraftsHandler{Stack: stack}
}

func (h *DraftsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Stack == nil {
		writeError(w, http.StatusInternalServerError, "draft stack not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/v1/entity-types" && r.Method == http.MethodGet:
		h.handleEntityTypes(w)
	case path == "/api/v1/drafts":
		h.handleCollection(w, r)
	case strings.HasPrefix(path, "/api/v1/drafts/"):
		h.handleDraft(w, r, strings.TrimPrefix(path, "/api/v1/drafts/"))
	default:
		http.NotFound(w, r)
	}
}

type entityTypePayload struct {
	Type           domain.EntityType `json:"type"`
	Label          string            `json:"label"`
	LabelPlural    string            `json:"label_plural"`
	RequiredFields []string          `json:"required_fields"`
	Defaults       map[string]any    `json:"defaults"`
}

func (h *DraftsHandler) handleEntityTypes(w http.ResponseWriter) {
	types := draft.DraftableTypes()
	payload := make([]entityTypePayload, 0, len(types))
	for _, t := range types {
		cfg, _ := draft.ConfigFor(t)
		payload = append(payload, entityTypePayload{
			Type:           t,
			Label:          cfg.Label,
			LabelPlural:    cfg.LabelPlural,
			RequiredFields: cfg.RequiredFields,
			Defaults:       cfg.Defaults,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entity_types": payload})
}

type startDraftRequest struct {
	EntityType  domain.EntityType `json:"entity_type"`
	FieldToFill string            `json:"field_to_fill"`
	InitialData map[string]any    `json:"initial_data"`
	Label       string            `json:"label"`
}

func (h *DraftsHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"entries": h.Stack.Entries(),
			"depth":   h.Stack.Depth(),
		})
	case http.MethodPost:
		var req startDraftRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if _, ok := draft.ConfigFor(req.EntityType); !ok {
			writeError(w, http.StatusUnprocessableEntity, "unknown entity type")
			return
		}
		id := h.Stack.StartCreation(r.Context(), req.EntityType, draft.StartOptions{
			FieldToFill: req.FieldToFill,
			InitialData: req.InitialData,
			Label:       req.Label,
		})
		entry, _ := h.Stack.GetDraft(id)
		writeJSON(w, http.StatusCreated, map[string]any{"draft": entry})
	case http.MethodDelete:
		h.Stack.ClearAllDrafts(r.Context())
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type completeDraftRequest struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	EntityType domain.EntityType `json:"entity_type"`
}

func (h *DraftsHandler) handleDraft(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	id := segments[0]

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			entry, ok := h.Stack.GetDraft(id)
			if !ok {
				writeError(w, http.StatusNotFound, "draft not found")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"draft": entry})
		case http.MethodPatch:
			var fields map[string]any
			if err := decodeJSON(r, &fields); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			// Unknown IDs are stale references from an abandoned session and
			// are acknowledged without effect.
			h.Stack.UpdateDraft(r.Context(), id, fields)
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if len(segments) != 2 {
		http.NotFound(w, r)
		return
	}
	if segments[1] == "validity" && r.Method == http.MethodGet {
		entry, ok := h.Stack.GetDraft(id)
		if !ok {
			writeError(w, http.StatusNotFound, "draft not found")
			return
		}
		form := draft.NewForm(h.Stack, entry.EntityType, draft.FormOptions{DraftID: id})
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":          form.IsValid(),
			"missing_fields": form.MissingFields(),
		})
		return
	}
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	switch segments[1] {
	case "complete":
		var req completeDraftRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		resumed := h.Stack.CompleteCreation(r.Context(), id, draft.CreationResult{
			ID:         req.ID,
			Name:       req.Name,
			EntityType: req.EntityType,
		})
		writeJSON(w, http.StatusOK, map[string]any{"resumed": resumed})
	case "cancel":
		top := h.Stack.CancelCreation(r.Context(), id)
		writeJSON(w, http.StatusOK, map[string]any{"top": top})
	default:
		http.NotFound(w, r)
	}
}
