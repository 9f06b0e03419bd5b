// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by sporely.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityStrain identifies a genetic strain record.
	EntityStrain EntityType = "strain"
	// EntityCulture identifies a culture record (agar plate, liquid culture, spawn).
	EntityCulture EntityType = "culture"
	// EntityGrow identifies a grow record.
	EntityGrow EntityType = "grow"
	// EntityRecipe identifies a substrate or medium recipe record.
	EntityRecipe EntityType = "recipe"
	// EntityRecipeCategory identifies a recipe category record.
	EntityRecipeCategory EntityType = "recipe_category"
	// EntityLocation identifies a physical lab location record.
	EntityLocation EntityType = "location"
	// EntityLocationType identifies a location type record.
	EntityLocationType EntityType = "location_type"
	// EntityLocationClassification identifies a location classification record.
	EntityLocationClassification EntityType = "location_classification"
	// EntityVessel identifies a vessel record (jar, bag, plate).
	EntityVessel EntityType = "vessel"
	// EntitySupplier identifies a supplier record.
	EntitySupplier EntityType = "supplier"
	// EntityGrainType identifies a grain type record.
	EntityGrainType EntityType = "grain_type"
	// EntitySubstrateType identifies a substrate type record.
	EntitySubstrateType EntityType = "substrate_type"
	// EntityContainerType identifies a container type record.
	EntityContainerType EntityType = "container_type"
	// EntityInventoryItem identifies an inventory item record.
	EntityInventoryItem EntityType = "inventory_item"
	// EntityInventoryLot identifies an inventory lot record.
	EntityInventoryLot EntityType = "inventory_lot"
	// EntityInventoryCategory identifies an inventory category record.
	EntityInventoryCategory EntityType = "inventory_category"
	// EntityPurchaseOrder identifies a purchase order record.
	EntityPurchaseOrder EntityType = "purchase_order"
	// EntityTask identifies a daily task record.
	EntityTask EntityType = "task"
)

// CultureStatus represents the canonical culture lifecycle states.
type CultureStatus string

// Canonical culture statuses used for lineage and task scheduling.
const (
	CultureStatusActive       CultureStatus = "active"
	CultureStatusContaminated CultureStatus = "contaminated"
	CultureStatusUsed         CultureStatus = "used"
	CultureStatusArchived     CultureStatus = "archived"
)

// GrowStage enumerates canonical grow workflow states.
type GrowStage string

// Canonical grow stages used for location capacity and yield calculations.
const (
	StagePlanned      GrowStage = "planned"
	StageInoculated   GrowStage = "inoculated"
	StageColonizing   GrowStage = "colonizing"
	StageFruiting     GrowStage = "fruiting"
	StageHarvested    GrowStage = "harvested"
	StageContaminated GrowStage = "contaminated"
)

// PurchaseOrderStatus enumerates purchase order workflow states.
type PurchaseOrderStatus string

// Canonical purchase order statuses.
const (
	PurchaseOrderDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderPlaced    PurchaseOrderStatus = "placed"
	PurchaseOrderReceived  PurchaseOrderStatus = "received"
	PurchaseOrderCancelled PurchaseOrderStatus = "cancelled"
)

// ReferenceKind tags a reference value record with the lookup set it belongs to.
type ReferenceKind string

// Lookup sets stored in the shared reference bucket. These are name-only
// taxonomies maintained by the lab (e.g. "Shoebox" as a container type).
const (
	ReferenceRecipeCategory         ReferenceKind = "recipe_category"
	ReferenceLocationType           ReferenceKind = "location_type"
	ReferenceLocationClassification ReferenceKind = "location_classification"
	ReferenceGrainType              ReferenceKind = "grain_type"
	ReferenceSubstrateType          ReferenceKind = "substrate_type"
	ReferenceContainerType          ReferenceKind = "container_type"
	ReferenceInventoryCategory      ReferenceKind = "inventory_category"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Strain represents a genetic line of a cultivated species.
type Strain struct {
	Base
	Name     string  `json:"name"`
	Species  string  `json:"species"`
	Genotype *string `json:"genotype,omitempty"`
	Source   *string `json:"source,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// Culture represents a live culture tracked through the lab: agar plate,
// liquid culture, or grain spawn. Lineage is recorded via ParentID.
type Culture struct {
	Base
	Label        string        `json:"label"`
	StrainID     *string       `json:"strain_id"`
	ParentID     *string       `json:"parent_id"`
	Medium       string        `json:"medium"`
	VesselID     *string       `json:"vessel_id"`
	LocationID   *string       `json:"location_id"`
	Status       CultureStatus `json:"status"`
	Generation   int           `json:"generation"`
	InoculatedAt time.Time     `json:"inoculated_at"`
	Notes        *string       `json:"notes,omitempty"`
}

// FlushRecord logs one harvest flush from a grow.
type FlushRecord struct {
	HarvestedAt time.Time `json:"harvested_at"`
	WetYieldG   float64   `json:"wet_yield_g"`
	Notes       *string   `json:"notes,omitempty"`
}

// Grow represents a substrate run from inoculation through harvest.
type Grow struct {
	Base
	Name              string        `json:"name"`
	CultureID         *string       `json:"culture_id"`
	RecipeID          *string       `json:"recipe_id"`
	LocationID        *string       `json:"location_id"`
	VesselID          *string       `json:"vessel_id"`
	Stage             GrowStage     `json:"stage"`
	SubstrateDryG     float64       `json:"substrate_dry_g"`
	Flushes           []FlushRecord `json:"flushes"`
	StartedAt         time.Time     `json:"started_at"`
	AttachmentKeys    []string      `json:"attachment_keys"`
	Notes             *string       `json:"notes,omitempty"`
	ContaminationNote *string       `json:"contamination_note,omitempty"`
}

// RecipeIngredient is one line of a recipe's bill of materials.
type RecipeIngredient struct {
	Name            string  `json:"name"`
	InventoryItemID *string `json:"inventory_item_id"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
}

// Recipe represents a substrate or medium formulation.
type Recipe struct {
	Base
	Name         string             `json:"name"`
	CategoryID   *string            `json:"category_id"`
	YieldG       float64            `json:"yield_g"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
	Instructions *string            `json:"instructions,omitempty"`
}

// Location models a node in the physical lab location tree (room, shelf, tub).
type Location struct {
	Base
	Name             string  `json:"name"`
	TypeID           *string `json:"type_id"`
	ClassificationID *string `json:"classification_id"`
	ParentID         *string `json:"parent_id"`
	Capacity         int     `json:"capacity"`
}

// Vessel captures a reusable or consumable growth container definition.
type Vessel struct {
	Base
	Name            string  `json:"name"`
	ContainerTypeID *string `json:"container_type_id"`
	VolumeML        float64 `json:"volume_ml"`
}

// Supplier represents a vendor inventory is purchased from.
type Supplier struct {
	Base
	Name         string  `json:"name"`
	ContactEmail *string `json:"contact_email,omitempty"`
	URL          *string `json:"url,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// ReferenceValue is a name-only lookup record shared by the simple taxonomies
// (grain types, container types, categories, location types/classifications).
type ReferenceValue struct {
	Base
	Kind ReferenceKind `json:"kind"`
	Name string        `json:"name"`
}

// InventoryItem defines a stockable material (grain, substrate, consumable).
type InventoryItem struct {
	Base
	Name         string  `json:"name"`
	CategoryID   *string `json:"category_id"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level"`
}

// InventoryLot is a dated, costed batch of an inventory item.
type InventoryLot struct {
	Base
	ItemID            string     `json:"item_id"`
	SupplierID        *string    `json:"supplier_id"`
	PurchaseOrderID   *string    `json:"purchase_order_id"`
	QuantityInitial   float64    `json:"quantity_initial"`
	QuantityRemaining float64    `json:"quantity_remaining"`
	UnitCost          float64    `json:"unit_cost"`
	ReceivedAt        time.Time  `json:"received_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
}

// PurchaseOrderLine is one requested item on a purchase order.
type PurchaseOrderLine struct {
	ItemID   string  `json:"item_id"`
	Quantity float64 `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
}

// PurchaseOrder tracks an order placed with a supplier.
type PurchaseOrder struct {
	Base
	SupplierID string              `json:"supplier_id"`
	Status     PurchaseOrderStatus `json:"status"`
	OrderedAt  *time.Time          `json:"ordered_at"`
	ReceivedAt *time.Time          `json:"received_at"`
	Lines      []PurchaseOrderLine `json:"lines"`
}

// TaskEntry is a dated lab chore, optionally linked to a grow or culture.
type TaskEntry struct {
	Base
	Title     string     `json:"title"`
	GrowID    *string    `json:"grow_id"`
	CultureID *string    `json:"culture_id"`
	DueOn     time.Time  `json:"due_on"`
	DoneAt    *time.Time `json:"done_at"`
	Notes     *string    `json:"notes,omitempty"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
