package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateStrain(Strain) (Strain, error)
	UpdateStrain(id string, mutator func(*Strain) error) (Strain, error)
	DeleteStrain(id string) error
	CreateCulture(Culture) (Culture, error)
	UpdateCulture(id string, mutator func(*Culture) error) (Culture, error)
	DeleteCulture(id string) error
	CreateGrow(Grow) (Grow, error)
	UpdateGrow(id string, mutator func(*Grow) error) (Grow, error)
	DeleteGrow(id string) error
	CreateRecipe(Recipe) (Recipe, error)
	UpdateRecipe(id string, mutator func(*Recipe) error) (Recipe, error)
	DeleteRecipe(id string) error
	CreateLocation(Location) (Location, error)
	UpdateLocation(id string, mutator func(*Location) error) (Location, error)
	DeleteLocation(id string) error
	CreateVessel(Vessel) (Vessel, error)
	UpdateVessel(id string, mutator func(*Vessel) error) (Vessel, error)
	DeleteVessel(id string) error
	CreateSupplier(Supplier) (Supplier, error)
	UpdateSupplier(id string, mutator func(*Supplier) error) (Supplier, error)
	DeleteSupplier(id string) error
	CreateReferenceValue(ReferenceValue) (ReferenceValue, error)
	UpdateReferenceValue(id string, mutator func(*ReferenceValue) error) (ReferenceValue, error)
	DeleteReferenceValue(id string) error
	CreateInventoryItem(InventoryItem) (InventoryItem, error)
	UpdateInventoryItem(id string, mutator func(*InventoryItem) error) (InventoryItem, error)
	DeleteInventoryItem(id string) error
	CreateInventoryLot(InventoryLot) (InventoryLot, error)
	UpdateInventoryLot(id string, mutator func(*InventoryLot) error) (InventoryLot, error)
	DeleteInventoryLot(id string) error
	CreatePurchaseOrder(PurchaseOrder) (PurchaseOrder, error)
	UpdatePurchaseOrder(id string, mutator func(*PurchaseOrder) error) (PurchaseOrder, error)
	DeletePurchaseOrder(id string) error
	CreateTask(TaskEntry) (TaskEntry, error)
	UpdateTask(id string, mutator func(*TaskEntry) error) (TaskEntry, error)
	DeleteTask(id string) error
	FindLocation(id string) (Location, bool)
	FindCulture(id string) (Culture, bool)
	FindInventoryItem(id string) (InventoryItem, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetStrain(id string) (Strain, bool)
	ListStrains() []Strain
	GetCulture(id string) (Culture, bool)
	ListCultures() []Culture
	GetGrow(id string) (Grow, bool)
	ListGrows() []Grow
	GetRecipe(id string) (Recipe, bool)
	ListRecipes() []Recipe
	GetLocation(id string) (Location, bool)
	ListLocations() []Location
	GetVessel(id string) (Vessel, bool)
	ListVessels() []Vessel
	GetSupplier(id string) (Supplier, bool)
	ListSuppliers() []Supplier
	ListReferenceValues(kind ReferenceKind) []ReferenceValue
	GetInventoryItem(id string) (InventoryItem, bool)
	ListInventoryItems() []InventoryItem
	GetInventoryLot(id string) (InventoryLot, bool)
	ListInventoryLots() []InventoryLot
	GetPurchaseOrder(id string) (PurchaseOrder, bool)
	ListPurchaseOrders() []PurchaseOrder
	GetTask(id string) (TaskEntry, bool)
	ListTasks() []TaskEntry
}
