package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sporely/pkg/domain"
)

func TestStoreBasicLifecycle(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateStrain(domain.Strain{Name: "Blue Oyster", Species: "Pleurotus ostreatus"})
		return err
	}); err != nil {
		t.Fatalf("create strain: %v", err)
	}
	if len(store.ListStrains()) != 1 {
		t.Fatalf("expected 1 strain")
	}
	snapshot := store.ExportState()
	store.ImportState(Snapshot{})
	if len(store.ListStrains()) != 0 {
		t.Fatalf("expected cleared state")
	}
	store.ImportState(snapshot)
	if len(store.ListStrains()) != 1 {
		t.Fatalf("expected restored strain")
	}
}

func TestStoreRuleViolationBlocksCommit(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	store.RulesEngine().Register(blockingRule{})
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateStrain(domain.Strain{Name: "Fail"})
		return e
	})
	if err == nil {
		t.Fatalf("expected violation error")
	}
	if _, ok := err.(domain.RuleViolationError); !ok {
		t.Fatalf("expected RuleViolationError, got %T", err)
	}
	if len(store.ListStrains()) != 0 {
		t.Fatalf("blocked transaction must not commit")
	}
}

type blockingRule struct{}

func (blockingRule) Name() string { return "block" }
func (blockingRule) Evaluate(_ context.Context, _ domain.RuleView, _ []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{Rule: "block", Severity: domain.SeverityBlock}}}, nil
}

func TestStoreCultureLifecycle(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var strainID, cultureID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		strain, err := tx.CreateStrain(domain.Strain{Name: "Lion's Mane", Species: "Hericium erinaceus"})
		if err != nil {
			return err
		}
		strainID = strain.ID
		culture, err := tx.CreateCulture(domain.Culture{Label: "LM-A1", StrainID: &strain.ID, Medium: "agar"})
		if err != nil {
			return err
		}
		cultureID = culture.ID
		if culture.Status != domain.CultureStatusActive {
			return fmt.Errorf("expected default active status, got %q", culture.Status)
		}
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteStrain(strainID)
	}); err == nil {
		t.Fatalf("expected referential guard to block strain delete")
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateCulture(cultureID, func(c *domain.Culture) error {
			c.Status = domain.CultureStatusContaminated
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update culture: %v", err)
	}
	got, ok := store.GetCulture(cultureID)
	if !ok || got.Status != domain.CultureStatusContaminated {
		t.Fatalf("expected contaminated status, got %+v ok=%v", got, ok)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if err := tx.DeleteCulture(cultureID); err != nil {
			return err
		}
		return tx.DeleteStrain(strainID)
	}); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if len(store.ListCultures()) != 0 || len(store.ListStrains()) != 0 {
		t.Fatalf("expected empty store after deletes")
	}
}

func TestStoreUpdateErrorDiscardsMutation(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var id string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		s, err := tx.CreateSupplier(domain.Supplier{Name: "North Spore"})
		id = s.ID
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateSupplier(id, func(s *domain.Supplier) error {
			s.Name = "changed"
			return fmt.Errorf("boom")
		})
		return err
	}); err == nil {
		t.Fatalf("expected mutator error to propagate")
	}
	got, _ := store.GetSupplier(id)
	if got.Name != "North Spore" {
		t.Fatalf("failed transaction must not commit, got name %q", got.Name)
	}
}

func TestStoreCloneIsolation(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var growID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		g, err := tx.CreateGrow(domain.Grow{Name: "Tub 1", Flushes: []domain.FlushRecord{{WetYieldG: 300}}})
		growID = g.ID
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, _ := store.GetGrow(growID)
	got.Flushes[0].WetYieldG = 999
	again, _ := store.GetGrow(growID)
	if again.Flushes[0].WetYieldG != 300 {
		t.Fatalf("mutating a returned grow must not affect stored state")
	}
}

func TestStoreReferenceValues(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, name := range []string{"Rye", "Oats", "Millet"} {
			if _, err := tx.CreateReferenceValue(domain.ReferenceValue{Kind: domain.ReferenceGrainType, Name: name}); err != nil {
				return err
			}
		}
		_, err := tx.CreateReferenceValue(domain.ReferenceValue{Kind: domain.ReferenceContainerType, Name: "Shoebox"})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	grains := store.ListReferenceValues(domain.ReferenceGrainType)
	if len(grains) != 3 {
		t.Fatalf("expected 3 grain types, got %d", len(grains))
	}
	if grains[0].Name != "Millet" || grains[2].Name != "Rye" {
		t.Fatalf("expected name-sorted grain types, got %v", grains)
	}
	if got := store.ListReferenceValues(domain.ReferenceContainerType); len(got) != 1 {
		t.Fatalf("expected 1 container type, got %d", len(got))
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateReferenceValue(domain.ReferenceValue{Name: "missing kind"})
		return err
	}); err == nil {
		t.Fatalf("expected kind-required error")
	}
}

func TestMigrateSnapshotDropsDanglingReferences(t *testing.T) {
	item := InventoryItem{Base: domain.Base{ID: "item-1"}, Name: "Rye Grain", Unit: "kg"}
	orphanLot := InventoryLot{Base: domain.Base{ID: "lot-orphan"}, ItemID: "missing"}
	goodLot := InventoryLot{Base: domain.Base{ID: "lot-good"}, ItemID: "item-1"}
	missingStrain := "missing-strain"
	culture := Culture{Base: domain.Base{ID: "cult-1"}, Label: "A", StrainID: &missingStrain}

	migrated := migrateSnapshot(Snapshot{
		Items:    map[string]InventoryItem{"item-1": item},
		Lots:     map[string]InventoryLot{"lot-orphan": orphanLot, "lot-good": goodLot},
		Cultures: map[string]Culture{"cult-1": culture},
	})
	if migrated.Strains == nil || migrated.Tasks == nil {
		t.Fatalf("expected nil buckets initialized")
	}
	if _, ok := migrated.Lots["lot-orphan"]; ok {
		t.Fatalf("expected orphan lot dropped")
	}
	if _, ok := migrated.Lots["lot-good"]; !ok {
		t.Fatalf("expected valid lot retained")
	}
	if migrated.Cultures["cult-1"].StrainID != nil {
		t.Fatalf("expected dangling strain pointer cleared")
	}
}

func TestStoreDeterministicTimestamps(t *testing.T) {
	store := NewStore(nil)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return fixed })
	var id string
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		v, err := tx.CreateVessel(domain.Vessel{Name: "Quart Jar", VolumeML: 946})
		id = v.ID
		return err
	}); err != nil {
		t.Fatalf("create vessel: %v", err)
	}
	got, _ := store.GetVessel(id)
	if !got.CreatedAt.Equal(fixed) || !got.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected fixed timestamps, got %v / %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestStoreViewSnapshot(t *testing.T) {
	store := NewStore(nil)
	if err := store.View(context.Background(), func(v domain.TransactionView) error {
		if len(v.ListGrows()) != 0 {
			return fmt.Errorf("expected empty")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}
