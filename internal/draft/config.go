// Package draft implements the nested entity-creation workflow: a LIFO stack
// of in-progress form drafts where completing a nested draft writes the new
// record's ID back into the field on the parent draft that spawned it. The
// stack is serialized to durable key-value storage after every change so an
// in-progress creation survives a restart.
package draft

import (
	"fmt"

	"sporely/pkg/domain"
)

// EntityTypeConfig is static per-entity-type metadata consulted by the stack
// and its form bindings. It never changes at runtime.
type EntityTypeConfig struct {
	Label          string
	LabelPlural    string
	RequiredFields []string
	Defaults       map[string]any
}

// entityConfigs enumerates every creatable entity kind. Types outside this
// table cannot be drafted.
var entityConfigs = map[domain.EntityType]EntityTypeConfig{
	domain.EntityStrain: {
		Label:          "Strain",
		LabelPlural:    "Strains",
		RequiredFields: []string{"name", "species"},
		Defaults:       map[string]any{},
	},
	domain.EntityCulture: {
		Label:          "Culture",
		LabelPlural:    "Cultures",
		RequiredFields: []string{"label", "medium"},
		Defaults:       map[string]any{"status": string(domain.CultureStatusActive), "generation": 0},
	},
	domain.EntityGrow: {
		Label:          "Grow",
		LabelPlural:    "Grows",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{"stage": string(domain.StagePlanned)},
	},
	domain.EntityRecipe: {
		Label:          "Recipe",
		LabelPlural:    "Recipes",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{"yield_g": float64(0)},
	},
	domain.EntityRecipeCategory: {
		Label:          "Recipe Category",
		LabelPlural:    "Recipe Categories",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{},
	},
	domain.EntityLocation: {
		Label:          "Location",
		LabelPlural:    "Locations",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{"capacity": 0},
	},
	domain.EntityLocationType: {
		Label:          "Location Type",
		LabelPlural:    "Location Types",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{},
	},
	domain.EntityLocationClassification: {
		Label:          "Location Classification",
		LabelPlural:    "Location Classifications",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{},
	},
	domain.EntityVessel: {
		Label:          "Vessel",
		LabelPlural:    "Vessels",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{"volume_ml": float64(0)},
	},
	domain.EntitySupplier: {
		Label:          "Supplier",
		LabelPlural:    "Suppliers",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{},
	},
	domain.EntityGrainType: {
		Label:          "Grain Type",
		LabelPlural:    "Grain Types",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{},
	},
	domain.EntitySubstrateType: {
		Label:          "Substrate Type",
		LabelPlural:    "Substrate Types",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{},
	},
	domain.EntityContainerType: {
		Label:          "Container Type",
		LabelPlural:    "Container Types",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{},
	},
	domain.EntityInventoryItem: {
		Label:          "Inventory Item",
		LabelPlural:    "Inventory Items",
		RequiredFields: []string{"name", "unit"},
		Defaults:       map[string]any{"reorder_level": float64(0)},
	},
	domain.EntityInventoryLot: {
		Label:          "Inventory Lot",
		LabelPlural:    "Inventory Lots",
		RequiredFields: []string{"item_id", "quantity_initial"},
		Defaults:       map[string]any{"unit_cost": float64(0)},
	},
	domain.EntityInventoryCategory: {
		Label:          "Inventory Category",
		LabelPlural:    "Inventory Categories",
		RequiredFields: []string{"name"},
		Defaults:       map[string]any{},
	},
}

// ConfigFor returns the static configuration for an entity type.
func ConfigFor(entityType domain.EntityType) (EntityTypeConfig, bool) {
	cfg, ok := entityConfigs[entityType]
	return cfg, ok
}

// mustConfig panics on unknown entity types. Drafting a type outside the
// fixed table is a programming error, not a runtime condition.
func mustConfig(entityType domain.EntityType) EntityTypeConfig {
	cfg, ok := entityConfigs[entityType]
	if !ok {
		panic(fmt.Sprintf("draft: unknown entity type %q", entityType))
	}
	return cfg
}

// DraftableTypes returns the entity types that can be drafted.
func DraftableTypes() []domain.EntityType {
	out := make([]domain.EntityType, 0, len(entityConfigs))
	for t := range entityConfigs {
		out = append(out, t)
	}
	return out
}
