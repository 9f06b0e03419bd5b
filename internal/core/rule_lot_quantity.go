package core

import (
	"context"
	"fmt"

	"sporely/pkg/domain"
)

// NewLotQuantityRule returns the rule validating inventory lot quantities:
// remaining stock must stay within [0, initial], and items whose total
// remaining stock falls below their reorder level produce a warning.
func NewLotQuantityRule() domain.Rule {
	return lotQuantityRule{}
}

type lotQuantityRule struct{}

func (lotQuantityRule) Name() string { return "lot_quantity" }

func (lotQuantityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	remainingByItem := make(map[string]float64)
	for _, lot := range view.ListInventoryLots() {
		remainingByItem[lot.ItemID] += lot.QuantityRemaining
		if lot.QuantityRemaining < 0 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "lot_quantity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("lot %s has negative remaining quantity %.3f", lot.ID, lot.QuantityRemaining),
				Entity:   domain.EntityInventoryLot,
				EntityID: lot.ID,
			})
		}
		if lot.QuantityRemaining > lot.QuantityInitial {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "lot_quantity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("lot %s remaining %.3f exceeds initial %.3f", lot.ID, lot.QuantityRemaining, lot.QuantityInitial),
				Entity:   domain.EntityInventoryLot,
				EntityID: lot.ID,
			})
		}
	}
	for _, item := range view.ListInventoryItems() {
		if item.ReorderLevel <= 0 {
			continue
		}
		if remaining := remainingByItem[item.ID]; remaining < item.ReorderLevel {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "lot_quantity",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("item %s (%s) below reorder level: %.3f < %.3f %s", item.Name, item.ID, remaining, item.ReorderLevel, item.Unit),
				Entity:   domain.EntityInventoryItem,
				EntityID: item.ID,
			})
		}
	}
	return res, nil
}
