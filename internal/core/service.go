package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sporely/pkg/domain"
)

// Service exposes higher-level transactional CRUD operations for the lab schema.
type Service struct {
	store   PersistentStore
	log     *zap.Logger
	metrics MetricsRecorder
}

// NewService constructs a service backed by the supplied store. A nil logger
// disables logging; a nil recorder disables metrics.
func NewService(store PersistentStore, log *zap.Logger, metrics MetricsRecorder) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}
	return &Service{store: store, log: log, metrics: metrics}
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// run executes fn in a transaction, recording latency and outcome, and logs
// any non-blocking violations the rules engine reported.
func (s *Service) run(ctx context.Context, op string, fn func(Transaction) error) (Result, error) {
	start := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil {
		s.log.Warn("transaction failed", zap.String("operation", op), zap.Error(err))
		return res, err
	}
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityWarn {
			s.log.Warn("rule warning",
				zap.String("operation", op),
				zap.String("rule", v.Rule),
				zap.String("entity_id", v.EntityID),
				zap.String("message", v.Message))
		}
	}
	return res, nil
}

// CreateStrain persists a new strain.
func (s *Service) CreateStrain(ctx context.Context, strain domain.Strain) (domain.Strain, Result, error) {
	var created domain.Strain
	res, err := s.run(ctx, "create_strain", func(tx Transaction) error {
		var err error
		created, err = tx.CreateStrain(strain)
		return err
	})
	return created, res, err
}

// UpdateStrain mutates a strain using the provided mutator.
func (s *Service) UpdateStrain(ctx context.Context, id string, mutator func(*domain.Strain) error) (domain.Strain, Result, error) {
	var updated domain.Strain
	res, err := s.run(ctx, "update_strain", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateStrain(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteStrain removes a strain record.
func (s *Service) DeleteStrain(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_strain", func(tx Transaction) error {
		return tx.DeleteStrain(id)
	})
}

// CreateCulture persists a new culture.
func (s *Service) CreateCulture(ctx context.Context, culture domain.Culture) (domain.Culture, Result, error) {
	var created domain.Culture
	res, err := s.run(ctx, "create_culture", func(tx Transaction) error {
		var err error
		created, err = tx.CreateCulture(culture)
		return err
	})
	return created, res, err
}

// UpdateCulture mutates a culture using the provided mutator.
func (s *Service) UpdateCulture(ctx context.Context, id string, mutator func(*domain.Culture) error) (domain.Culture, Result, error) {
	var updated domain.Culture
	res, err := s.run(ctx, "update_culture", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateCulture(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteCulture removes a culture record.
func (s *Service) DeleteCulture(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_culture", func(tx Transaction) error {
		return tx.DeleteCulture(id)
	})
}

// AssignCultureLocation moves a culture to a location, validating the target
// exists within the same transaction the capacity rule evaluates.
func (s *Service) AssignCultureLocation(ctx context.Context, cultureID, locationID string) (domain.Culture, Result, error) {
	var updated domain.Culture
	res, err := s.run(ctx, "assign_culture_location", func(tx Transaction) error {
		if _, ok := tx.FindLocation(locationID); !ok {
			return fmt.Errorf("location %q not found", locationID)
		}
		var err error
		updated, err = tx.UpdateCulture(cultureID, func(c *domain.Culture) error {
			c.LocationID = &locationID
			return nil
		})
		return err
	})
	return updated, res, err
}

// CreateGrow persists a new grow.
func (s *Service) CreateGrow(ctx context.Context, grow domain.Grow) (domain.Grow, Result, error) {
	var created domain.Grow
	res, err := s.run(ctx, "create_grow", func(tx Transaction) error {
		var err error
		created, err = tx.CreateGrow(grow)
		return err
	})
	return created, res, err
}

// UpdateGrow mutates a grow using the provided mutator.
func (s *Service) UpdateGrow(ctx context.Context, id string, mutator func(*domain.Grow) error) (domain.Grow, Result, error) {
	var updated domain.Grow
	res, err := s.run(ctx, "update_grow", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateGrow(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteGrow removes a grow record.
func (s *Service) DeleteGrow(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_grow", func(tx Transaction) error {
		return tx.DeleteGrow(id)
	})
}

// AssignGrowLocation moves a grow to a location, validating the target exists.
func (s *Service) AssignGrowLocation(ctx context.Context, growID, locationID string) (domain.Grow, Result, error) {
	var updated domain.Grow
	res, err := s.run(ctx, "assign_grow_location", func(tx Transaction) error {
		if _, ok := tx.FindLocation(locationID); !ok {
			return fmt.Errorf("location %q not found", locationID)
		}
		var err error
		updated, err = tx.UpdateGrow(growID, func(g *domain.Grow) error {
			g.LocationID = &locationID
			return nil
		})
		return err
	})
	return updated, res, err
}

// RecordFlush appends a harvest flush to a grow and moves it to the harvested
// stage when the caller marks it final.
func (s *Service) RecordFlush(ctx context.Context, growID string, flush domain.FlushRecord, final bool) (domain.Grow, Result, error) {
	var updated domain.Grow
	res, err := s.run(ctx, "record_flush", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateGrow(growID, func(g *domain.Grow) error {
			if flush.WetYieldG < 0 {
				return fmt.Errorf("flush yield must be non-negative")
			}
			g.Flushes = append(g.Flushes, flush)
			if final {
				g.Stage = domain.StageHarvested
			}
			return nil
		})
		return err
	})
	return updated, res, err
}

// MarkGrowContaminated records a contamination note and moves the grow to the
// contaminated stage.
func (s *Service) MarkGrowContaminated(ctx context.Context, growID, note string) (domain.Grow, Result, error) {
	var updated domain.Grow
	res, err := s.run(ctx, "mark_grow_contaminated", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateGrow(growID, func(g *domain.Grow) error {
			g.Stage = domain.StageContaminated
			if note != "" {
				g.ContaminationNote = &note
			}
			return nil
		})
		return err
	})
	return updated, res, err
}

// CreateRecipe persists a new recipe.
func (s *Service) CreateRecipe(ctx context.Context, recipe domain.Recipe) (domain.Recipe, Result, error) {
	var created domain.Recipe
	res, err := s.run(ctx, "create_recipe", func(tx Transaction) error {
		var err error
		created, err = tx.CreateRecipe(recipe)
		return err
	})
	return created, res, err
}

// UpdateRecipe mutates a recipe using the provided mutator.
func (s *Service) UpdateRecipe(ctx context.Context, id string, mutator func(*domain.Recipe) error) (domain.Recipe, Result, error) {
	var updated domain.Recipe
	res, err := s.run(ctx, "update_recipe", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateRecipe(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteRecipe removes a recipe record.
func (s *Service) DeleteRecipe(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_recipe", func(tx Transaction) error {
		return tx.DeleteRecipe(id)
	})
}

// CreateLocation persists a new location.
func (s *Service) CreateLocation(ctx context.Context, location domain.Location) (domain.Location, Result, error) {
	var created domain.Location
	res, err := s.run(ctx, "create_location", func(tx Transaction) error {
		var err error
		created, err = tx.CreateLocation(location)
		return err
	})
	return created, res, err
}

// UpdateLocation mutates a location using the provided mutator.
func (s *Service) UpdateLocation(ctx context.Context, id string, mutator func(*domain.Location) error) (domain.Location, Result, error) {
	var updated domain.Location
	res, err := s.run(ctx, "update_location", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateLocation(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteLocation removes a location record.
func (s *Service) DeleteLocation(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_location", func(tx Transaction) error {
		return tx.DeleteLocation(id)
	})
}

// CreateVessel persists a new vessel.
func (s *Service) CreateVessel(ctx context.Context, vessel domain.Vessel) (domain.Vessel, Result, error) {
	var created domain.Vessel
	res, err := s.run(ctx, "create_vessel", func(tx Transaction) error {
		var err error
		created, err = tx.CreateVessel(vessel)
		return err
	})
	return created, res, err
}

// UpdateVessel mutates a vessel using the provided mutator.
func (s *Service) UpdateVessel(ctx context.Context, id string, mutator func(*domain.Vessel) error) (domain.Vessel, Result, error) {
	var updated domain.Vessel
	res, err := s.run(ctx, "update_vessel", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateVessel(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteVessel removes a vessel record.
func (s *Service) DeleteVessel(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_vessel", func(tx Transaction) error {
		return tx.DeleteVessel(id)
	})
}

// CreateSupplier persists a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, supplier domain.Supplier) (domain.Supplier, Result, error) {
	var created domain.Supplier
	res, err := s.run(ctx, "create_supplier", func(tx Transaction) error {
		var err error
		created, err = tx.CreateSupplier(supplier)
		return err
	})
	return created, res, err
}

// UpdateSupplier mutates a supplier using the provided mutator.
func (s *Service) UpdateSupplier(ctx context.Context, id string, mutator func(*domain.Supplier) error) (domain.Supplier, Result, error) {
	var updated domain.Supplier
	res, err := s.run(ctx, "update_supplier", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateSupplier(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteSupplier removes a supplier record.
func (s *Service) DeleteSupplier(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_supplier", func(tx Transaction) error {
		return tx.DeleteSupplier(id)
	})
}

// CreateReferenceValue persists a new lookup record.
func (s *Service) CreateReferenceValue(ctx context.Context, ref domain.ReferenceValue) (domain.ReferenceValue, Result, error) {
	var created domain.ReferenceValue
	res, err := s.run(ctx, "create_reference_value", func(tx Transaction) error {
		var err error
		created, err = tx.CreateReferenceValue(ref)
		return err
	})
	return created, res, err
}

// UpdateReferenceValue mutates a lookup record using the provided mutator.
func (s *Service) UpdateReferenceValue(ctx context.Context, id string, mutator func(*domain.ReferenceValue) error) (domain.ReferenceValue, Result, error) {
	var updated domain.ReferenceValue
	res, err := s.run(ctx, "update_reference_value", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateReferenceValue(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteReferenceValue removes a lookup record.
func (s *Service) DeleteReferenceValue(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_reference_value", func(tx Transaction) error {
		return tx.DeleteReferenceValue(id)
	})
}

// CreateInventoryItem persists a new inventory item.
func (s *Service) CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, Result, error) {
	var created domain.InventoryItem
	res, err := s.run(ctx, "create_inventory_item", func(tx Transaction) error {
		var err error
		created, err = tx.CreateInventoryItem(item)
		return err
	})
	return created, res, err
}

// UpdateInventoryItem mutates an inventory item using the provided mutator.
func (s *Service) UpdateInventoryItem(ctx context.Context, id string, mutator func(*domain.InventoryItem) error) (domain.InventoryItem, Result, error) {
	var updated domain.InventoryItem
	res, err := s.run(ctx, "update_inventory_item", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateInventoryItem(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteInventoryItem removes an inventory item record.
func (s *Service) DeleteInventoryItem(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_inventory_item", func(tx Transaction) error {
		return tx.DeleteInventoryItem(id)
	})
}

// CreateInventoryLot persists a new inventory lot. Remaining quantity
// defaults to the initial quantity when unset.
func (s *Service) CreateInventoryLot(ctx context.Context, lot domain.InventoryLot) (domain.InventoryLot, Result, error) {
	if lot.QuantityRemaining == 0 && lot.QuantityInitial > 0 {
		lot.QuantityRemaining = lot.QuantityInitial
	}
	var created domain.InventoryLot
	res, err := s.run(ctx, "create_inventory_lot", func(tx Transaction) error {
		var err error
		created, err = tx.CreateInventoryLot(lot)
		return err
	})
	return created, res, err
}

// UpdateInventoryLot applies mutator to an existing inventory lot.
func (s *Service) UpdateInventoryLot(ctx context.Context, id string, mutator func(*domain.InventoryLot) error) (domain.InventoryLot, Result, error) {
	var updated domain.InventoryLot
	res, err := s.run(ctx, "update_inventory_lot", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateInventoryLot(id, mutator)
		return err
	})
	return updated, res, err
}

// ConsumeLot deducts quantity from a lot's remaining stock.
func (s *Service) ConsumeLot(ctx context.Context, lotID string, quantity float64) (domain.InventoryLot, Result, error) {
	var updated domain.InventoryLot
	res, err := s.run(ctx, "consume_lot", func(tx Transaction) error {
		if quantity <= 0 {
			return fmt.Errorf("consume quantity must be positive")
		}
		var err error
		updated, err = tx.UpdateInventoryLot(lotID, func(l *domain.InventoryLot) error {
			if l.QuantityRemaining < quantity {
				return fmt.Errorf("lot %q has %.3f remaining, cannot consume %.3f", lotID, l.QuantityRemaining, quantity)
			}
			l.QuantityRemaining -= quantity
			return nil
		})
		return err
	})
	return updated, res, err
}

// DeleteInventoryLot removes an inventory lot record.
func (s *Service) DeleteInventoryLot(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_inventory_lot", func(tx Transaction) error {
		return tx.DeleteInventoryLot(id)
	})
}

// CreatePurchaseOrder persists a new purchase order.
func (s *Service) CreatePurchaseOrder(ctx context.Context, order domain.PurchaseOrder) (domain.PurchaseOrder, Result, error) {
	var created domain.PurchaseOrder
	res, err := s.run(ctx, "create_purchase_order", func(tx Transaction) error {
		var err error
		created, err = tx.CreatePurchaseOrder(order)
		return err
	})
	return created, res, err
}

// UpdatePurchaseOrder mutates a purchase order using the provided mutator.
func (s *Service) UpdatePurchaseOrder(ctx context.Context, id string, mutator func(*domain.PurchaseOrder) error) (domain.PurchaseOrder, Result, error) {
	var updated domain.PurchaseOrder
	res, err := s.run(ctx, "update_purchase_order", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdatePurchaseOrder(id, mutator)
		return err
	})
	return updated, res, err
}

// DeletePurchaseOrder removes a purchase order record.
func (s *Service) DeletePurchaseOrder(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_purchase_order", func(tx Transaction) error {
		return tx.DeletePurchaseOrder(id)
	})
}

// ReceivePurchaseOrder marks a placed order received and creates one
// inventory lot per line, all in a single transaction.
func (s *Service) ReceivePurchaseOrder(ctx context.Context, orderID string, receivedAt time.Time) ([]domain.InventoryLot, Result, error) {
	var lots []domain.InventoryLot
	res, err := s.run(ctx, "receive_purchase_order", func(tx Transaction) error {
		order, err := tx.UpdatePurchaseOrder(orderID, func(o *domain.PurchaseOrder) error {
			if o.Status == domain.PurchaseOrderReceived {
				return fmt.Errorf("purchase order %q already received", orderID)
			}
			if o.Status == domain.PurchaseOrderCancelled {
				return fmt.Errorf("purchase order %q is cancelled", orderID)
			}
			o.Status = domain.PurchaseOrderReceived
			o.ReceivedAt = &receivedAt
			return nil
		})
		if err != nil {
			return err
		}
		for _, line := range order.Lines {
			lot, err := tx.CreateInventoryLot(domain.InventoryLot{
				ItemID:            line.ItemID,
				SupplierID:        &order.SupplierID,
				PurchaseOrderID:   &order.ID,
				QuantityInitial:   line.Quantity,
				QuantityRemaining: line.Quantity,
				UnitCost:          line.UnitCost,
				ReceivedAt:        receivedAt,
			})
			if err != nil {
				return err
			}
			lots = append(lots, lot)
		}
		return nil
	})
	if err != nil {
		return nil, res, err
	}
	return lots, res, nil
}

// CreateTask persists a new task.
func (s *Service) CreateTask(ctx context.Context, task domain.TaskEntry) (domain.TaskEntry, Result, error) {
	var created domain.TaskEntry
	res, err := s.run(ctx, "create_task", func(tx Transaction) error {
		var err error
		created, err = tx.CreateTask(task)
		return err
	})
	return created, res, err
}

// UpdateTask mutates a task using the provided mutator.
func (s *Service) UpdateTask(ctx context.Context, id string, mutator func(*domain.TaskEntry) error) (domain.TaskEntry, Result, error) {
	var updated domain.TaskEntry
	res, err := s.run(ctx, "update_task", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateTask(id, mutator)
		return err
	})
	return updated, res, err
}

// CompleteTask stamps a task done at the given time.
func (s *Service) CompleteTask(ctx context.Context, id string, doneAt time.Time) (domain.TaskEntry, Result, error) {
	var updated domain.TaskEntry
	res, err := s.run(ctx, "complete_task", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateTask(id, func(t *domain.TaskEntry) error {
			t.DoneAt = &doneAt
			return nil
		})
		return err
	})
	return updated, res, err
}

// DeleteTask removes a task record.
func (s *Service) DeleteTask(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_task", func(tx Transaction) error {
		return tx.DeleteTask(id)
	})
}
