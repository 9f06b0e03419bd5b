package core

import (
	"context"
	"errors"
	"testing"

	"sporely/internal/infra/persistence/memory"
	"sporely/pkg/domain"
)

func TestLocationCapacityRuleBlocksOverfill(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	var locationID string
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		loc, err := tx.CreateLocation(domain.Location{Name: "Incubator A", Capacity: 1})
		if err != nil {
			return err
		}
		locationID = loc.ID
		_, err = tx.CreateGrow(domain.Grow{Name: "Tub 1", LocationID: &loc.ID, Stage: domain.StageColonizing})
		return err
	}); err != nil {
		t.Fatalf("seed within capacity: %v", err)
	}

	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, e := tx.CreateGrow(domain.Grow{Name: "Tub 2", LocationID: &locationID, Stage: domain.StageColonizing})
		return e
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected capacity violation, got %v", err)
	}
	if violation.Result.Violations[0].Rule != "location_capacity" {
		t.Fatalf("unexpected rule: %+v", violation.Result.Violations)
	}
}

func TestLocationCapacityIgnoresTerminalGrows(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		loc, err := tx.CreateLocation(domain.Location{Name: "Shelf", Capacity: 1})
		if err != nil {
			return err
		}
		if _, err := tx.CreateGrow(domain.Grow{Name: "Done", LocationID: &loc.ID, Stage: domain.StageHarvested}); err != nil {
			return err
		}
		_, err = tx.CreateGrow(domain.Grow{Name: "Active", LocationID: &loc.ID, Stage: domain.StageFruiting})
		return err
	}); err != nil {
		t.Fatalf("harvested grows must not count toward capacity: %v", err)
	}
}

func TestLocationCapacityZeroMeansUnlimited(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		loc, err := tx.CreateLocation(domain.Location{Name: "Warehouse", Capacity: 0})
		if err != nil {
			return err
		}
		for i := 0; i < 5; i++ {
			if _, err := tx.CreateGrow(domain.Grow{Name: "Tub", LocationID: &loc.ID, Stage: domain.StageColonizing}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("capacity 0 must be unlimited: %v", err)
	}
}

func TestLotQuantityRuleBlocksNegativeRemaining(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()
	var lotID string
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		item, err := tx.CreateInventoryItem(domain.InventoryItem{Name: "Rye", Unit: "kg"})
		if err != nil {
			return err
		}
		lot, err := tx.CreateInventoryLot(domain.InventoryLot{ItemID: item.ID, QuantityInitial: 10, QuantityRemaining: 10})
		lotID = lot.ID
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, e := tx.UpdateInventoryLot(lotID, func(l *domain.InventoryLot) error {
			l.QuantityRemaining = -1
			return nil
		})
		return e
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected lot quantity violation, got %v", err)
	}
}

func TestLotQuantityRuleWarnsBelowReorderLevel(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		item, err := tx.CreateInventoryItem(domain.InventoryItem{Name: "Agar", Unit: "g", ReorderLevel: 500})
		if err != nil {
			return err
		}
		_, err = tx.CreateInventoryLot(domain.InventoryLot{ItemID: item.ID, QuantityInitial: 100, QuantityRemaining: 100})
		return err
	})
	if err != nil {
		t.Fatalf("warnings must not block: %v", err)
	}
	found := false
	for _, v := range res.Violations {
		if v.Rule == "lot_quantity" && v.Severity == domain.SeverityWarn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected reorder warning, got %+v", res.Violations)
	}
}

func TestCultureLineageRuleBlocksCycle(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()
	var aID, bID string
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		a, err := tx.CreateCulture(domain.Culture{Label: "A", Medium: "agar"})
		if err != nil {
			return err
		}
		aID = a.ID
		b, err := tx.CreateCulture(domain.Culture{Label: "B", Medium: "agar", ParentID: &a.ID})
		bID = b.ID
		return err
	}); err != nil {
		t.Fatalf("seed lineage: %v", err)
	}
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, e := tx.UpdateCulture(aID, func(c *domain.Culture) error {
			c.ParentID = &bID
			return nil
		})
		return e
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected lineage cycle violation, got %v", err)
	}
}

func TestCultureLineageRuleBlocksUnknownParent(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ghost := "ghost-parent"
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, e := tx.CreateCulture(domain.Culture{Label: "Orphan", Medium: "agar", ParentID: &ghost})
		return e
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected unknown parent violation, got %v", err)
	}
	if violation.Result.Violations[0].Rule != "culture_lineage" {
		t.Fatalf("unexpected rule: %+v", violation.Result.Violations)
	}
	if got := store.ListCultures(); len(got) != 0 {
		t.Fatalf("blocked culture must not commit, got %+v", got)
	}
}

func TestCultureLineageRuleWarnsOnContaminatedParent(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		parent, err := tx.CreateCulture(domain.Culture{Label: "P", Medium: "agar", Status: domain.CultureStatusContaminated})
		if err != nil {
			return err
		}
		_, err = tx.CreateCulture(domain.Culture{Label: "C", Medium: "grain", ParentID: &parent.ID})
		return err
	})
	if err != nil {
		t.Fatalf("warning must not block: %v", err)
	}
	found := false
	for _, v := range res.Violations {
		if v.Rule == "culture_lineage" && v.Severity == domain.SeverityWarn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected contamination warning, got %+v", res.Violations)
	}
}
