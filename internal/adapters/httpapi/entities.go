package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sporely/internal/core"
	"sporely/pkg/domain"
)

// EntitiesHandler provides CRUD and workflow access to the lab schema.
type EntitiesHandler struct {
	Service     *core.Service
	collections map[string]collection
}

// collection describes the generic CRUD surface of one entity kind.
type collection struct {
	list   func(r *http.Request) any
	get    func(id string) (any, bool)
	create func(ctx context.Context, body []byte) (any, core.Result, error)
	update func(ctx context.Context, id string, body []byte) (any, core.Result, error)
	remove func(ctx context.Context, id string) (core.Result, error)
}

// crud wires the five standard operations for an entity kind. Updates decode
// the request body over the current record, so absent fields keep their value.
func crud[T any](
	list func() []T,
	get func(string) (T, bool),
	create func(context.Context, T) (T, core.Result, error),
	update func(context.Context, string, func(*T) error) (T, core.Result, error),
	remove func(context.Context, string) (core.Result, error),
) collection {
	return collection{
		list: func(*http.Request) any { return list() },
		get: func(id string) (any, bool) {
			record, ok := get(id)
			return record, ok
		},
		create: func(ctx context.Context, body []byte) (any, core.Result, error) {
			var record T
			if err := json.Unmarshal(body, &record); err != nil {
				return nil, core.Result{}, errBadPayload
			}
			created, res, err := create(ctx, record)
			return created, res, err
		},
		update: func(ctx context.Context, id string, body []byte) (any, core.Result, error) {
			updated, res, err := update(ctx, id, func(record *T) error {
				if err := json.Unmarshal(body, record); err != nil {
					return errBadPayload
				}
				return nil
			})
			return updated, res, err
		},
		remove: remove,
	}
}

type badPayloadError struct{}

func (badPayloadError) Error() string { return "invalid request body" }

var errBadPayload = badPayloadError{}

// NewEntitiesHandler constructs the entity CRUD handler backed by svc.
func NewEntitiesHandler(svc *core.Service) *EntitiesHandler {
	store := svc.Store()
	h := &EntitiesHandler{Service: svc}
	h.collections = map[string]collection{
		"strains":         crud(store.ListStrains, store.GetStrain, svc.CreateStrain, svc.UpdateStrain, svc.DeleteStrain),
		"cultures":        crud(store.ListCultures, store.GetCulture, svc.CreateCulture, svc.UpdateCulture, svc.DeleteCulture),
		"grows":           crud(store.ListGrows, store.GetGrow, svc.CreateGrow, svc.UpdateGrow, svc.DeleteGrow),
		"recipes":         crud(store.ListRecipes, store.GetRecipe, svc.CreateRecipe, svc.UpdateRecipe, svc.DeleteRecipe),
		"locations":       crud(store.ListLocations, store.GetLocation, svc.CreateLocation, svc.UpdateLocation, svc.DeleteLocation),
		"vessels":         crud(store.ListVessels, store.GetVessel, svc.CreateVessel, svc.UpdateVessel, svc.DeleteVessel),
		"suppliers":       crud(store.ListSuppliers, store.GetSupplier, svc.CreateSupplier, svc.UpdateSupplier, svc.DeleteSupplier),
		"inventory-items": crud(store.ListInventoryItems, store.GetInventoryItem, svc.CreateInventoryItem, svc.UpdateInventoryItem, svc.DeleteInventoryItem),
		"inventory-lots":  crud(store.ListInventoryLots, store.GetInventoryLot, svc.CreateInventoryLot, svc.UpdateInventoryLot, svc.DeleteInventoryLot),
		"purchase-orders": crud(store.ListPurchaseOrders, store.GetPurchaseOrder, svc.CreatePurchaseOrder, svc.UpdatePurchaseOrder, svc.DeletePurchaseOrder),
		"tasks":           crud(store.ListTasks, store.GetTask, svc.CreateTask, svc.UpdateTask, svc.DeleteTask),
	}

	// Reference values share one bucket; listing filters by kind.
	refs := crud(
		func() []domain.ReferenceValue { return store.ListReferenceValues("") },
		func(id string) (domain.ReferenceValue, bool) {
			for _, ref := range store.ListReferenceValues("") {
				if ref.ID == id {
					return ref, true
				}
			}
			return domain.ReferenceValue{}, false
		},
		svc.CreateReferenceValue, svc.UpdateReferenceValue, svc.DeleteReferenceValue,
	)
	refs.list = func(r *http.Request) any {
		return store.ListReferenceValues(domain.ReferenceKind(r.URL.Query().Get("kind")))
	}
	h.collections["reference-values"] = refs
	return h
}

func (h *EntitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "entity service not configured")
		return
	}

	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1/"), "/")
	segments := strings.Split(path, "/")
	col, ok := h.collections[segments[0]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch len(segments) {
	case 1:
		h.handleCollection(w, r, col)
	case 2:
		h.handleRecord(w, r, col, segments[1])
	case 3:
		h.handleAction(w, r, segments[0], segments[1], segments[2])
	default:
		http.NotFound(w, r)
	}
}

func (h *EntitiesHandler) handleCollection(w http.ResponseWriter, r *http.Request, col collection) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"records": col.list(r)})
	case http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		record, res, err := col.create(r.Context(), body)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		writeRecord(w, http.StatusCreated, record, res)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *EntitiesHandler) handleRecord(w http.ResponseWriter, r *http.Request, col collection, id string) {
	switch r.Method {
	case http.MethodGet:
		record, ok := col.get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"record": record})
	case http.MethodPatch:
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		record, res, err := col.update(r.Context(), id, body)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		writeRecord(w, http.StatusOK, record, res)
	case http.MethodDelete:
		res, err := col.remove(r.Context(), id)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"violations": warnings(res)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleAction routes workflow and derived-value endpoints that go beyond
// plain CRUD.
func (h *EntitiesHandler) handleAction(w http.ResponseWriter, r *http.Request, colName, id, action string) {
	switch colName + "/" + action {
	case "cultures/location":
		h.assign(w, r, func(ctx context.Context, locationID string) (any, core.Result, error) {
			return h.Service.AssignCultureLocation(ctx, id, locationID)
		})
	case "grows/location":
		h.assign(w, r, func(ctx context.Context, locationID string) (any, core.Result, error) {
			return h.Service.AssignGrowLocation(ctx, id, locationID)
		})
	case "grows/flushes":
		h.handleFlush(w, r, id)
	case "grows/contaminated":
		h.handleContaminated(w, r, id)
	case "grows/efficiency":
		h.handleEfficiency(w, r, id)
	case "inventory-lots/consume":
		h.handleConsume(w, r, id)
	case "purchase-orders/receive":
		h.handleReceive(w, r, id)
	case "tasks/complete":
		h.handleTaskComplete(w, r, id)
	case "recipes/scaled":
		h.handleScaled(w, r, id)
	case "recipes/cost":
		h.handleRecipeCost(w, r, id)
	case "locations/path":
		h.handleLocationPath(w, r, id)
	case "locations/subtree":
		h.handleLocationSubtree(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type assignRequest struct {
	LocationID string `json:"location_id"`
}

func (h *EntitiesHandler) assign(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (any, core.Result, error)) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, res, err := fn(r.Context(), req.LocationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeRecord(w, http.StatusOK, record, res)
}

type flushRequest struct {
	HarvestedAt time.Time `json:"harvested_at"`
	WetYieldG   float64   `json:"wet_yield_g"`
	Notes       *string   `json:"notes"`
	Final       bool      `json:"final"`
}

func (h *EntitiesHandler) handleFlush(w http.ResponseWriter, r *http.Request, growID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req flushRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	flush := domain.FlushRecord{HarvestedAt: req.HarvestedAt, WetYieldG: req.WetYieldG, Notes: req.Notes}
	grow, res, err := h.Service.RecordFlush(r.Context(), growID, flush, req.Final)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeRecord(w, http.StatusOK, grow, res)
}

func (h *EntitiesHandler) handleContaminated(w http.ResponseWriter, r *http.Request, growID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	grow, res, err := h.Service.MarkGrowContaminated(r.Context(), growID, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeRecord(w, http.StatusOK, grow, res)
}

func (h *EntitiesHandler) handleEfficiency(w http.ResponseWriter, r *http.Request, growID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	grow, ok := h.Service.Store().GetGrow(growID)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"grow_id":                  grow.ID,
		"biological_efficiency_pc": core.BiologicalEfficiency(grow),
	})
}

func (h *EntitiesHandler) handleConsume(w http.ResponseWriter, r *http.Request, lotID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Quantity float64 `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	lot, res, err := h.Service.ConsumeLot(r.Context(), lotID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeRecord(w, http.StatusOK, lot, res)
}

func (h *EntitiesHandler) handleReceive(w http.ResponseWriter, r *http.Request, orderID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		ReceivedAt time.Time `json:"received_at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ReceivedAt.IsZero() {
		req.ReceivedAt = time.Now().UTC()
	}
	lots, res, err := h.Service.ReceivePurchaseOrder(r.Context(), orderID, req.ReceivedAt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lots": lots, "violations": warnings(res)})
}

func (h *EntitiesHandler) handleTaskComplete(w http.ResponseWriter, r *http.Request, taskID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		DoneAt time.Time `json:"done_at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DoneAt.IsZero() {
		req.DoneAt = time.Now().UTC()
	}
	task, res, err := h.Service.CompleteTask(r.Context(), taskID, req.DoneAt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeRecord(w, http.StatusOK, task, res)
}

func (h *EntitiesHandler) handleScaled(w http.ResponseWriter, r *http.Request, recipeID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	recipe, ok := h.Service.Store().GetRecipe(recipeID)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	factor, err := strconv.ParseFloat(r.URL.Query().Get("factor"), 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "factor query parameter required")
		return
	}
	scaled, err := core.ScaleRecipe(recipe, factor)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": scaled, "factor": factor})
}

func (h *EntitiesHandler) handleRecipeCost(w http.ResponseWriter, r *http.Request, recipeID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	store := h.Service.Store()
	recipe, ok := store.GetRecipe(recipeID)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	total, unpriced := core.RecipeCost(recipe, store.ListInventoryLots())
	writeJSON(w, http.StatusOK, map[string]any{
		"recipe_id":            recipe.ID,
		"total_cost":           total,
		"unpriced_ingredients": unpriced,
	})
}

func (h *EntitiesHandler) handleLocationPath(w http.ResponseWriter, r *http.Request, locationID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var path string
	var found bool
	err := h.Service.Store().View(r.Context(), func(view core.TransactionView) error {
		path, found = core.LocationPath(view, locationID)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"location_id": locationID, "path": path})
}

func (h *EntitiesHandler) handleLocationSubtree(w http.ResponseWriter, r *http.Request, locationID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var ids []string
	err := h.Service.Store().View(r.Context(), func(view core.TransactionView) error {
		ids = core.LocationSubtree(view, locationID)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ids == nil {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"location_id": locationID, "subtree": ids})
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errBadPayload
	}
	return body, nil
}

func warnings(res core.Result) []violationPayload {
	out := make([]violationPayload, 0, len(res.Violations))
	for _, v := range res.Violations {
		out = append(out, violationPayload{
			Rule:     v.Rule,
			Severity: string(v.Severity),
			Message:  v.Message,
			Entity:   string(v.Entity),
			EntityID: v.EntityID,
		})
	}
	return out
}

func writeRecord(w http.ResponseWriter, status int, record any, res core.Result) {
	writeJSON(w, status, map[string]any{"record": record, "violations": warnings(res)})
}

// writeRequestError distinguishes malformed payloads from domain failures.
func writeRequestError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadPayload) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeDomainError(w, err)
}
