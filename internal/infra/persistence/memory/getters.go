package memory

import (
	"sort"

	"sporely/pkg/domain"
)

// GetStrain returns a clone of the strain with the given ID.
func (s *Store) GetStrain(id string) (Strain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.strains[id]
	if !ok {
		return Strain{}, false
	}
	return cloneStrain(v), true
}

// ListStrains returns all strains sorted by ID.
func (s *Store) ListStrains() []Strain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Strain, 0, len(s.state.strains))
	for _, v := range s.state.strains {
		out = append(out, cloneStrain(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetCulture returns a clone of the culture with the given ID.
func (s *Store) GetCulture(id string) (Culture, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.cultures[id]
	if !ok {
		return Culture{}, false
	}
	return cloneCulture(v), true
}

// ListCultures returns all cultures sorted by ID.
func (s *Store) ListCultures() []Culture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Culture, 0, len(s.state.cultures))
	for _, v := range s.state.cultures {
		out = append(out, cloneCulture(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetGrow returns a clone of the grow with the given ID.
func (s *Store) GetGrow(id string) (Grow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.grows[id]
	if !ok {
		return Grow{}, false
	}
	return cloneGrow(v), true
}

// ListGrows returns all grows sorted by ID.
func (s *Store) ListGrows() []Grow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Grow, 0, len(s.state.grows))
	for _, v := range s.state.grows {
		out = append(out, cloneGrow(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetRecipe returns a clone of the recipe with the given ID.
func (s *Store) GetRecipe(id string) (Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.recipes[id]
	if !ok {
		return Recipe{}, false
	}
	return cloneRecipe(v), true
}

// ListRecipes returns all recipes sorted by ID.
func (s *Store) ListRecipes() []Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Recipe, 0, len(s.state.recipes))
	for _, v := range s.state.recipes {
		out = append(out, cloneRecipe(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetLocation returns a clone of the location with the given ID.
func (s *Store) GetLocation(id string) (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.locations[id]
	if !ok {
		return Location{}, false
	}
	return cloneLocation(v), true
}

// ListLocations returns all locations sorted by ID.
func (s *Store) ListLocations() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Location, 0, len(s.state.locations))
	for _, v := range s.state.locations {
		out = append(out, cloneLocation(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetVessel returns a clone of the vessel with the given ID.
func (s *Store) GetVessel(id string) (Vessel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.vessels[id]
	if !ok {
		return Vessel{}, false
	}
	return cloneVessel(v), true
}

// ListVessels returns all vessels sorted by ID.
func (s *Store) ListVessels() []Vessel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Vessel, 0, len(s.state.vessels))
	for _, v := range s.state.vessels {
		out = append(out, cloneVessel(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetSupplier returns a clone of the supplier with the given ID.
func (s *Store) GetSupplier(id string) (Supplier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.suppliers[id]
	if !ok {
		return Supplier{}, false
	}
	return cloneSupplier(v), true
}

// ListSuppliers returns all suppliers sorted by ID.
func (s *Store) ListSuppliers() []Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Supplier, 0, len(s.state.suppliers))
	for _, v := range s.state.suppliers {
		out = append(out, cloneSupplier(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListReferenceValues returns lookup records of the given kind sorted by name,
// then ID for records sharing a name. An empty kind returns every record.
func (s *Store) ListReferenceValues(kind domain.ReferenceKind) []ReferenceValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ReferenceValue, 0)
	for _, v := range s.state.refs {
		if kind == "" || v.Kind == kind {
			out = append(out, cloneReferenceValue(v))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GetInventoryItem returns a clone of the inventory item with the given ID.
func (s *Store) GetInventoryItem(id string) (InventoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.items[id]
	if !ok {
		return InventoryItem{}, false
	}
	return cloneInventoryItem(v), true
}

// ListInventoryItems returns all inventory items sorted by ID.
func (s *Store) ListInventoryItems() []InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]InventoryItem, 0, len(s.state.items))
	for _, v := range s.state.items {
		out = append(out, cloneInventoryItem(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetInventoryLot returns a clone of the inventory lot with the given ID.
func (s *Store) GetInventoryLot(id string) (InventoryLot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.lots[id]
	if !ok {
		return InventoryLot{}, false
	}
	return cloneInventoryLot(v), true
}

// ListInventoryLots returns all inventory lots sorted by ID.
func (s *Store) ListInventoryLots() []InventoryLot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]InventoryLot, 0, len(s.state.lots))
	for _, v := range s.state.lots {
		out = append(out, cloneInventoryLot(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetPurchaseOrder returns a clone of the purchase order with the given ID.
func (s *Store) GetPurchaseOrder(id string) (PurchaseOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.orders[id]
	if !ok {
		return PurchaseOrder{}, false
	}
	return clonePurchaseOrder(v), true
}

// ListPurchaseOrders returns all purchase orders sorted by ID.
func (s *Store) ListPurchaseOrders() []PurchaseOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PurchaseOrder, 0, len(s.state.orders))
	for _, v := range s.state.orders {
		out = append(out, clonePurchaseOrder(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetTask returns a clone of the task with the given ID.
func (s *Store) GetTask(id string) (TaskEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.tasks[id]
	if !ok {
		return TaskEntry{}, false
	}
	return cloneTask(v), true
}

// ListTasks returns all tasks sorted by due date, then ID.
func (s *Store) ListTasks() []TaskEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TaskEntry, 0, len(s.state.tasks))
	for _, v := range s.state.tasks {
		out = append(out, cloneTask(v))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueOn.Equal(out[j].DueOn) {
			return out[i].DueOn.Before(out[j].DueOn)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
