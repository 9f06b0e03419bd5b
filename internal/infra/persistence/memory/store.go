// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sporely/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Strain aliases domain.Strain for in-memory persistence operations.
	Strain = domain.Strain
	// Culture aliases domain.Culture.
	Culture = domain.Culture
	// Grow aliases domain.Grow.
	Grow = domain.Grow
	// Recipe aliases domain.Recipe.
	Recipe = domain.Recipe
	// Location aliases domain.Location.
	Location = domain.Location
	// Vessel aliases domain.Vessel.
	Vessel = domain.Vessel
	// Supplier aliases domain.Supplier.
	Supplier = domain.Supplier
	// ReferenceValue aliases domain.ReferenceValue.
	ReferenceValue = domain.ReferenceValue
	// InventoryItem aliases domain.InventoryItem.
	InventoryItem = domain.InventoryItem
	// InventoryLot aliases domain.InventoryLot.
	InventoryLot = domain.InventoryLot
	// PurchaseOrder aliases domain.PurchaseOrder.
	PurchaseOrder = domain.PurchaseOrder
	// TaskEntry aliases domain.TaskEntry.
	TaskEntry = domain.TaskEntry
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	strains   map[string]Strain
	cultures  map[string]Culture
	grows     map[string]Grow
	recipes   map[string]Recipe
	locations map[string]Location
	vessels   map[string]Vessel
	suppliers map[string]Supplier
	refs      map[string]ReferenceValue
	items     map[string]InventoryItem
	lots      map[string]InventoryLot
	orders    map[string]PurchaseOrder
	tasks     map[string]TaskEntry
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Strains   map[string]Strain         `json:"strains"`
	Cultures  map[string]Culture        `json:"cultures"`
	Grows     map[string]Grow           `json:"grows"`
	Recipes   map[string]Recipe         `json:"recipes"`
	Locations map[string]Location       `json:"locations"`
	Vessels   map[string]Vessel         `json:"vessels"`
	Suppliers map[string]Supplier       `json:"suppliers"`
	Refs      map[string]ReferenceValue `json:"refs"`
	Items     map[string]InventoryItem  `json:"items"`
	Lots      map[string]InventoryLot   `json:"lots"`
	Orders    map[string]PurchaseOrder  `json:"orders"`
	Tasks     map[string]TaskEntry      `json:"tasks"`
}

func newMemoryState() memoryState {
	return memoryState{
		strains:   make(map[string]Strain),
		cultures:  make(map[string]Culture),
		grows:     make(map[string]Grow),
		recipes:   make(map[string]Recipe),
		locations: make(map[string]Location),
		vessels:   make(map[string]Vessel),
		suppliers: make(map[string]Supplier),
		refs:      make(map[string]ReferenceValue),
		items:     make(map[string]InventoryItem),
		lots:      make(map[string]InventoryLot),
		orders:    make(map[string]PurchaseOrder),
		tasks:     make(map[string]TaskEntry),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Strains:   make(map[string]Strain, len(state.strains)),
		Cultures:  make(map[string]Culture, len(state.cultures)),
		Grows:     make(map[string]Grow, len(state.grows)),
		Recipes:   make(map[string]Recipe, len(state.recipes)),
		Locations: make(map[string]Location, len(state.locations)),
		Vessels:   make(map[string]Vessel, len(state.vessels)),
		Suppliers: make(map[string]Supplier, len(state.suppliers)),
		Refs:      make(map[string]ReferenceValue, len(state.refs)),
		Items:     make(map[string]InventoryItem, len(state.items)),
		Lots:      make(map[string]InventoryLot, len(state.lots)),
		Orders:    make(map[string]PurchaseOrder, len(state.orders)),
		Tasks:     make(map[string]TaskEntry, len(state.tasks)),
	}
	for k, v := range state.strains {
		s.Strains[k] = cloneStrain(v)
	}
	for k, v := range state.cultures {
		s.Cultures[k] = cloneCulture(v)
	}
	for k, v := range state.grows {
		s.Grows[k] = cloneGrow(v)
	}
	for k, v := range state.recipes {
		s.Recipes[k] = cloneRecipe(v)
	}
	for k, v := range state.locations {
		s.Locations[k] = cloneLocation(v)
	}
	for k, v := range state.vessels {
		s.Vessels[k] = cloneVessel(v)
	}
	for k, v := range state.suppliers {
		s.Suppliers[k] = cloneSupplier(v)
	}
	for k, v := range state.refs {
		s.Refs[k] = cloneReferenceValue(v)
	}
	for k, v := range state.items {
		s.Items[k] = cloneInventoryItem(v)
	}
	for k, v := range state.lots {
		s.Lots[k] = cloneInventoryLot(v)
	}
	for k, v := range state.orders {
		s.Orders[k] = clonePurchaseOrder(v)
	}
	for k, v := range state.tasks {
		s.Tasks[k] = cloneTask(v)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Strains {
		state.strains[k] = cloneStrain(v)
	}
	for k, v := range s.Cultures {
		state.cultures[k] = cloneCulture(v)
	}
	for k, v := range s.Grows {
		state.grows[k] = cloneGrow(v)
	}
	for k, v := range s.Recipes {
		state.recipes[k] = cloneRecipe(v)
	}
	for k, v := range s.Locations {
		state.locations[k] = cloneLocation(v)
	}
	for k, v := range s.Vessels {
		state.vessels[k] = cloneVessel(v)
	}
	for k, v := range s.Suppliers {
		state.suppliers[k] = cloneSupplier(v)
	}
	for k, v := range s.Refs {
		state.refs[k] = cloneReferenceValue(v)
	}
	for k, v := range s.Items {
		state.items[k] = cloneInventoryItem(v)
	}
	for k, v := range s.Lots {
		state.lots[k] = cloneInventoryLot(v)
	}
	for k, v := range s.Orders {
		state.orders[k] = clonePurchaseOrder(v)
	}
	for k, v := range s.Tasks {
		state.tasks[k] = cloneTask(v)
	}
	return state
}

// migrateSnapshot normalizes snapshots loaded from durable storage: missing
// buckets become empty maps and dangling references are dropped or cleared so
// the hydrated state satisfies the same invariants as freshly written state.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Strains == nil {
		snapshot.Strains = map[string]Strain{}
	}
	if snapshot.Cultures == nil {
		snapshot.Cultures = map[string]Culture{}
	}
	if snapshot.Grows == nil {
		snapshot.Grows = map[string]Grow{}
	}
	if snapshot.Recipes == nil {
		snapshot.Recipes = map[string]Recipe{}
	}
	if snapshot.Locations == nil {
		snapshot.Locations = map[string]Location{}
	}
	if snapshot.Vessels == nil {
		snapshot.Vessels = map[string]Vessel{}
	}
	if snapshot.Suppliers == nil {
		snapshot.Suppliers = map[string]Supplier{}
	}
	if snapshot.Refs == nil {
		snapshot.Refs = map[string]ReferenceValue{}
	}
	if snapshot.Items == nil {
		snapshot.Items = map[string]InventoryItem{}
	}
	if snapshot.Lots == nil {
		snapshot.Lots = map[string]InventoryLot{}
	}
	if snapshot.Orders == nil {
		snapshot.Orders = map[string]PurchaseOrder{}
	}
	if snapshot.Tasks == nil {
		snapshot.Tasks = map[string]TaskEntry{}
	}

	strainExists := func(id string) bool {
		_, ok := snapshot.Strains[id]
		return ok
	}
	cultureExists := func(id string) bool {
		_, ok := snapshot.Cultures[id]
		return ok
	}
	locationExists := func(id string) bool {
		_, ok := snapshot.Locations[id]
		return ok
	}
	itemExists := func(id string) bool {
		_, ok := snapshot.Items[id]
		return ok
	}
	supplierExists := func(id string) bool {
		_, ok := snapshot.Suppliers[id]
		return ok
	}

	for id, culture := range snapshot.Cultures {
		if culture.StrainID != nil && !strainExists(*culture.StrainID) {
			culture.StrainID = nil
		}
		if culture.ParentID != nil && !cultureExists(*culture.ParentID) {
			culture.ParentID = nil
		}
		if culture.LocationID != nil && !locationExists(*culture.LocationID) {
			culture.LocationID = nil
		}
		snapshot.Cultures[id] = culture
	}

	for id, grow := range snapshot.Grows {
		if grow.CultureID != nil && !cultureExists(*grow.CultureID) {
			grow.CultureID = nil
		}
		if grow.LocationID != nil && !locationExists(*grow.LocationID) {
			grow.LocationID = nil
		}
		snapshot.Grows[id] = grow
	}

	for id, location := range snapshot.Locations {
		if location.ParentID != nil && !locationExists(*location.ParentID) {
			location.ParentID = nil
		}
		if location.Capacity < 0 {
			location.Capacity = 0
		}
		snapshot.Locations[id] = location
	}

	for id, lot := range snapshot.Lots {
		if lot.ItemID == "" || !itemExists(lot.ItemID) {
			delete(snapshot.Lots, id)
			continue
		}
		if lot.SupplierID != nil && !supplierExists(*lot.SupplierID) {
			lot.SupplierID = nil
		}
		snapshot.Lots[id] = lot
	}

	for id, order := range snapshot.Orders {
		if order.SupplierID == "" || !supplierExists(order.SupplierID) {
			delete(snapshot.Orders, id)
			continue
		}
		snapshot.Orders[id] = order
	}

	for id, task := range snapshot.Tasks {
		if task.GrowID != nil {
			if _, ok := snapshot.Grows[*task.GrowID]; !ok {
				task.GrowID = nil
			}
		}
		if task.CultureID != nil && !cultureExists(*task.CultureID) {
			task.CultureID = nil
		}
		snapshot.Tasks[id] = task
	}

	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.strains {
		cloned.strains[k] = cloneStrain(v)
	}
	for k, v := range s.cultures {
		cloned.cultures[k] = cloneCulture(v)
	}
	for k, v := range s.grows {
		cloned.grows[k] = cloneGrow(v)
	}
	for k, v := range s.recipes {
		cloned.recipes[k] = cloneRecipe(v)
	}
	for k, v := range s.locations {
		cloned.locations[k] = cloneLocation(v)
	}
	for k, v := range s.vessels {
		cloned.vessels[k] = cloneVessel(v)
	}
	for k, v := range s.suppliers {
		cloned.suppliers[k] = cloneSupplier(v)
	}
	for k, v := range s.refs {
		cloned.refs[k] = cloneReferenceValue(v)
	}
	for k, v := range s.items {
		cloned.items[k] = cloneInventoryItem(v)
	}
	for k, v := range s.lots {
		cloned.lots[k] = cloneInventoryLot(v)
	}
	for k, v := range s.orders {
		cloned.orders[k] = clonePurchaseOrder(v)
	}
	for k, v := range s.tasks {
		cloned.tasks[k] = cloneTask(v)
	}
	return cloned
}

func cloneStrain(s Strain) Strain { return s }

func cloneCulture(c Culture) Culture { return c }

func cloneGrow(g Grow) Grow {
	cp := g
	cp.Flushes = append([]domain.FlushRecord(nil), g.Flushes...)
	cp.AttachmentKeys = append([]string(nil), g.AttachmentKeys...)
	return cp
}

func cloneRecipe(r Recipe) Recipe {
	cp := r
	cp.Ingredients = append([]domain.RecipeIngredient(nil), r.Ingredients...)
	return cp
}

func cloneLocation(l Location) Location             { return l }
func cloneVessel(v Vessel) Vessel                   { return v }
func cloneSupplier(s Supplier) Supplier             { return s }
func cloneReferenceValue(r ReferenceValue) ReferenceValue { return r }
func cloneInventoryItem(i InventoryItem) InventoryItem    { return i }

func cloneInventoryLot(l InventoryLot) InventoryLot {
	cp := l
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		cp.ExpiresAt = &t
	}
	return cp
}

func clonePurchaseOrder(o PurchaseOrder) PurchaseOrder {
	cp := o
	cp.Lines = append([]domain.PurchaseOrderLine(nil), o.Lines...)
	return cp
}

func cloneTask(t TaskEntry) TaskEntry { return t }

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetNowFunc overrides the time provider, used by tests for deterministic stamps.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

// Transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindLocation exposes location lookup within the transaction scope.
func (tx *transaction) FindLocation(id string) (Location, bool) {
	l, ok := tx.state.locations[id]
	if !ok {
		return Location{}, false
	}
	return cloneLocation(l), true
}

// FindCulture exposes culture lookup within the transaction scope.
func (tx *transaction) FindCulture(id string) (Culture, bool) {
	c, ok := tx.state.cultures[id]
	if !ok {
		return Culture{}, false
	}
	return cloneCulture(c), true
}

// FindInventoryItem exposes inventory item lookup within the transaction scope.
func (tx *transaction) FindInventoryItem(id string) (InventoryItem, bool) {
	i, ok := tx.state.items[id]
	if !ok {
		return InventoryItem{}, false
	}
	return cloneInventoryItem(i), true
}
