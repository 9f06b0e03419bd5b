// Package core exposes the transactional service layer, the default rule set,
// and derived calculations over lab records.
package core

import (
	"sporely/pkg/domain"
)

type (
	// Transaction aliases the domain transaction contract.
	Transaction = domain.Transaction
	// TransactionView aliases the read-only transaction view.
	TransactionView = domain.TransactionView
	// PersistentStore aliases the domain persistence abstraction.
	PersistentStore = domain.PersistentStore
	// RulesEngine aliases the domain rules engine.
	RulesEngine = domain.RulesEngine
	// Result aliases the rule evaluation result.
	Result = domain.Result
)

// NewDefaultRulesEngine returns an engine loaded with the built-in rules:
// location capacity, inventory lot quantity bounds, and culture lineage
// integrity.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewLocationCapacityRule())
	engine.Register(NewLotQuantityRule())
	engine.Register(NewCultureLineageRule())
	return engine
}
