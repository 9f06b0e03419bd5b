package core

import (
	"context"
	"math"
	"reflect"
	"testing"

	"sporely/internal/infra/persistence/memory"
	"sporely/pkg/domain"
)

func TestScaleRecipe(t *testing.T) {
	recipe := domain.Recipe{
		Name:   "CVG",
		YieldG: 5000,
		Ingredients: []domain.RecipeIngredient{
			{Name: "Coco Coir", Quantity: 650, Unit: "g"},
			{Name: "Vermiculite", Quantity: 2, Unit: "qt"},
		},
	}
	scaled, err := ScaleRecipe(recipe, 2.5)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	if scaled.YieldG != 12500 {
		t.Fatalf("yield = %.1f, want 12500", scaled.YieldG)
	}
	if scaled.Ingredients[0].Quantity != 1625 || scaled.Ingredients[1].Quantity != 5 {
		t.Fatalf("ingredients not scaled: %+v", scaled.Ingredients)
	}
	if recipe.Ingredients[0].Quantity != 650 {
		t.Fatalf("input recipe must not be mutated")
	}
	if _, err := ScaleRecipe(recipe, 0); err == nil {
		t.Fatalf("expected non-positive factor rejection")
	}
}

func TestRecipeCost(t *testing.T) {
	itemID := "item-rye"
	recipe := domain.Recipe{
		Ingredients: []domain.RecipeIngredient{
			{Name: "Rye", InventoryItemID: &itemID, Quantity: 3, Unit: "kg"},
			{Name: "Tap Water", Quantity: 2, Unit: "l"},
		},
	}
	lots := []domain.InventoryLot{
		{ItemID: itemID, UnitCost: 2.0},
		{ItemID: itemID, UnitCost: 4.0},
	}
	total, unpriced := RecipeCost(recipe, lots)
	if math.Abs(total-9.0) > 1e-9 {
		t.Fatalf("total = %.2f, want 9.00", total)
	}
	if !reflect.DeepEqual(unpriced, []string{"Tap Water"}) {
		t.Fatalf("unpriced = %v", unpriced)
	}
}

func TestBiologicalEfficiency(t *testing.T) {
	grow := domain.Grow{
		SubstrateDryG: 1000,
		Flushes: []domain.FlushRecord{
			{WetYieldG: 400},
			{WetYieldG: 200},
		},
	}
	if got := BiologicalEfficiency(grow); got != 60 {
		t.Fatalf("efficiency = %.2f, want 60", got)
	}
	if got := BiologicalEfficiency(domain.Grow{}); got != 0 {
		t.Fatalf("zero substrate must yield 0, got %.2f", got)
	}
}

func TestLocationPathAndSubtree(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()
	var roomID, tubID, otherID string
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		room, err := tx.CreateLocation(domain.Location{Name: "Grow Room"})
		if err != nil {
			return err
		}
		roomID = room.ID
		shelf, err := tx.CreateLocation(domain.Location{Name: "Shelf 2", ParentID: &room.ID})
		if err != nil {
			return err
		}
		tub, err := tx.CreateLocation(domain.Location{Name: "Tub 3", ParentID: &shelf.ID})
		if err != nil {
			return err
		}
		tubID = tub.ID
		other, err := tx.CreateLocation(domain.Location{Name: "Closet"})
		otherID = other.ID
		return err
	}); err != nil {
		t.Fatalf("seed tree: %v", err)
	}

	if err := store.View(ctx, func(view TransactionView) error {
		path, ok := LocationPath(view, tubID)
		if !ok || path != "Grow Room / Shelf 2 / Tub 3" {
			t.Fatalf("path = %q ok=%v", path, ok)
		}
		if _, ok := LocationPath(view, "missing"); ok {
			t.Fatalf("missing location must not resolve")
		}
		subtree := LocationSubtree(view, roomID)
		if len(subtree) != 3 {
			t.Fatalf("subtree = %v, want 3 nodes", subtree)
		}
		for _, id := range subtree {
			if id == otherID {
				t.Fatalf("unrelated location in subtree: %v", subtree)
			}
		}
		if got := LocationSubtree(view, tubID); len(got) != 1 || got[0] != tubID {
			t.Fatalf("leaf subtree = %v", got)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}
