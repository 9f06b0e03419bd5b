package core

import (
	"fmt"
	"sort"
	"strings"

	"sporely/pkg/domain"
)

// ScaleRecipe returns a copy of the recipe with every ingredient quantity and
// the yield multiplied by factor.
func ScaleRecipe(recipe domain.Recipe, factor float64) (domain.Recipe, error) {
	if factor <= 0 {
		return domain.Recipe{}, fmt.Errorf("scale factor must be positive")
	}
	scaled := recipe
	scaled.YieldG = recipe.YieldG * factor
	scaled.Ingredients = make([]domain.RecipeIngredient, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		ing.Quantity *= factor
		scaled.Ingredients[i] = ing
	}
	return scaled, nil
}

// RecipeCost estimates the material cost of one batch of a recipe by pricing
// each ingredient at the average unit cost of the lots on hand for its linked
// inventory item. Ingredients without a linked item, or whose item has no
// lots, contribute zero and are reported back.
func RecipeCost(recipe domain.Recipe, lots []domain.InventoryLot) (total float64, unpriced []string) {
	costs := make(map[string][]float64)
	for _, lot := range lots {
		costs[lot.ItemID] = append(costs[lot.ItemID], lot.UnitCost)
	}
	for _, ing := range recipe.Ingredients {
		if ing.InventoryItemID == nil {
			unpriced = append(unpriced, ing.Name)
			continue
		}
		lotCosts := costs[*ing.InventoryItemID]
		if len(lotCosts) == 0 {
			unpriced = append(unpriced, ing.Name)
			continue
		}
		var sum float64
		for _, c := range lotCosts {
			sum += c
		}
		total += ing.Quantity * (sum / float64(len(lotCosts)))
	}
	return total, unpriced
}

// BiologicalEfficiency returns the total wet yield of a grow as a percentage
// of its dry substrate mass. Zero substrate mass yields zero.
func BiologicalEfficiency(grow domain.Grow) float64 {
	if grow.SubstrateDryG <= 0 {
		return 0
	}
	var wet float64
	for _, flush := range grow.Flushes {
		wet += flush.WetYieldG
	}
	return wet / grow.SubstrateDryG * 100
}

// LocationPath returns the names from the root of the location tree down to
// the given location, joined by " / ". Broken parent links terminate the walk.
func LocationPath(view domain.RuleView, locationID string) (string, bool) {
	location, ok := view.FindLocation(locationID)
	if !ok {
		return "", false
	}
	names := []string{location.Name}
	seen := map[string]bool{location.ID: true}
	for location.ParentID != nil {
		parent, ok := view.FindLocation(*location.ParentID)
		if !ok || seen[parent.ID] {
			break
		}
		names = append(names, parent.Name)
		seen[parent.ID] = true
		location = parent
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, " / "), true
}

// LocationSubtree returns the IDs of the location and all its descendants,
// sorted for determinism.
func LocationSubtree(view domain.RuleView, locationID string) []string {
	if _, ok := view.FindLocation(locationID); !ok {
		return nil
	}
	children := make(map[string][]string)
	for _, l := range view.ListLocations() {
		if l.ParentID != nil {
			children[*l.ParentID] = append(children[*l.ParentID], l.ID)
		}
	}
	var out []string
	queue := []string{locationID}
	seen := map[string]bool{locationID: true}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		for _, child := range children[id] {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	sort.Strings(out)
	return out
}
