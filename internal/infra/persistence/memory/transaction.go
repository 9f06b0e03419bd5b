package memory

import (
	"fmt"

	"sporely/pkg/domain"
)

// CreateStrain stores a new strain within the transaction.
func (tx *transaction) CreateStrain(s Strain) (Strain, error) {
	if s.ID == "" {
		s.ID = tx.store.newID()
	}
	if _, exists := tx.state.strains[s.ID]; exists {
		return Strain{}, fmt.Errorf("strain %q already exists", s.ID)
	}
	s.CreatedAt = tx.now
	s.UpdatedAt = tx.now
	tx.state.strains[s.ID] = cloneStrain(s)
	tx.recordChange(Change{Entity: domain.EntityStrain, Action: domain.ActionCreate, After: cloneStrain(s)})
	return cloneStrain(s), nil
}

// UpdateStrain mutates a strain using the provided mutator function.
func (tx *transaction) UpdateStrain(id string, mutator func(*Strain) error) (Strain, error) {
	current, ok := tx.state.strains[id]
	if !ok {
		return Strain{}, fmt.Errorf("strain %q not found", id)
	}
	before := cloneStrain(current)
	if err := mutator(&current); err != nil {
		return Strain{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.strains[id] = cloneStrain(current)
	tx.recordChange(Change{Entity: domain.EntityStrain, Action: domain.ActionUpdate, Before: before, After: cloneStrain(current)})
	return cloneStrain(current), nil
}

// DeleteStrain removes a strain; cultures referencing it keep history by blocking the delete.
func (tx *transaction) DeleteStrain(id string) error {
	current, ok := tx.state.strains[id]
	if !ok {
		return fmt.Errorf("strain %q not found", id)
	}
	for _, culture := range tx.state.cultures {
		if culture.StrainID != nil && *culture.StrainID == id {
			return fmt.Errorf("strain %q still referenced by culture %q", id, culture.ID)
		}
	}
	delete(tx.state.strains, id)
	tx.recordChange(Change{Entity: domain.EntityStrain, Action: domain.ActionDelete, Before: cloneStrain(current)})
	return nil
}

// CreateCulture stores a new culture within the transaction.
func (tx *transaction) CreateCulture(c Culture) (Culture, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.cultures[c.ID]; exists {
		return Culture{}, fmt.Errorf("culture %q already exists", c.ID)
	}
	if c.Status == "" {
		c.Status = domain.CultureStatusActive
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.cultures[c.ID] = cloneCulture(c)
	tx.recordChange(Change{Entity: domain.EntityCulture, Action: domain.ActionCreate, After: cloneCulture(c)})
	return cloneCulture(c), nil
}

// UpdateCulture mutates a culture using the provided mutator function.
func (tx *transaction) UpdateCulture(id string, mutator func(*Culture) error) (Culture, error) {
	current, ok := tx.state.cultures[id]
	if !ok {
		return Culture{}, fmt.Errorf("culture %q not found", id)
	}
	before := cloneCulture(current)
	if err := mutator(&current); err != nil {
		return Culture{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.cultures[id] = cloneCulture(current)
	tx.recordChange(Change{Entity: domain.EntityCulture, Action: domain.ActionUpdate, Before: before, After: cloneCulture(current)})
	return cloneCulture(current), nil
}

// DeleteCulture removes a culture from the transaction state.
func (tx *transaction) DeleteCulture(id string) error {
	current, ok := tx.state.cultures[id]
	if !ok {
		return fmt.Errorf("culture %q not found", id)
	}
	for _, grow := range tx.state.grows {
		if grow.CultureID != nil && *grow.CultureID == id {
			return fmt.Errorf("culture %q still referenced by grow %q", id, grow.ID)
		}
	}
	for _, child := range tx.state.cultures {
		if child.ParentID != nil && *child.ParentID == id {
			return fmt.Errorf("culture %q still referenced by culture %q", id, child.ID)
		}
	}
	delete(tx.state.cultures, id)
	tx.recordChange(Change{Entity: domain.EntityCulture, Action: domain.ActionDelete, Before: cloneCulture(current)})
	return nil
}

// CreateGrow stores a new grow within the transaction.
func (tx *transaction) CreateGrow(g Grow) (Grow, error) {
	if g.ID == "" {
		g.ID = tx.store.newID()
	}
	if _, exists := tx.state.grows[g.ID]; exists {
		return Grow{}, fmt.Errorf("grow %q already exists", g.ID)
	}
	if g.Stage == "" {
		g.Stage = domain.StagePlanned
	}
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	tx.state.grows[g.ID] = cloneGrow(g)
	tx.recordChange(Change{Entity: domain.EntityGrow, Action: domain.ActionCreate, After: cloneGrow(g)})
	return cloneGrow(g), nil
}

// UpdateGrow mutates a grow using the provided mutator function.
func (tx *transaction) UpdateGrow(id string, mutator func(*Grow) error) (Grow, error) {
	current, ok := tx.state.grows[id]
	if !ok {
		return Grow{}, fmt.Errorf("grow %q not found", id)
	}
	before := cloneGrow(current)
	if err := mutator(&current); err != nil {
		return Grow{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.grows[id] = cloneGrow(current)
	tx.recordChange(Change{Entity: domain.EntityGrow, Action: domain.ActionUpdate, Before: before, After: cloneGrow(current)})
	return cloneGrow(current), nil
}

// DeleteGrow removes a grow from the transaction state.
func (tx *transaction) DeleteGrow(id string) error {
	current, ok := tx.state.grows[id]
	if !ok {
		return fmt.Errorf("grow %q not found", id)
	}
	delete(tx.state.grows, id)
	tx.recordChange(Change{Entity: domain.EntityGrow, Action: domain.ActionDelete, Before: cloneGrow(current)})
	return nil
}

// CreateRecipe stores a new recipe within the transaction.
func (tx *transaction) CreateRecipe(r Recipe) (Recipe, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.recipes[r.ID]; exists {
		return Recipe{}, fmt.Errorf("recipe %q already exists", r.ID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.recipes[r.ID] = cloneRecipe(r)
	tx.recordChange(Change{Entity: domain.EntityRecipe, Action: domain.ActionCreate, After: cloneRecipe(r)})
	return cloneRecipe(r), nil
}

// UpdateRecipe mutates a recipe using the provided mutator function.
func (tx *transaction) UpdateRecipe(id string, mutator func(*Recipe) error) (Recipe, error) {
	current, ok := tx.state.recipes[id]
	if !ok {
		return Recipe{}, fmt.Errorf("recipe %q not found", id)
	}
	before := cloneRecipe(current)
	if err := mutator(&current); err != nil {
		return Recipe{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.recipes[id] = cloneRecipe(current)
	tx.recordChange(Change{Entity: domain.EntityRecipe, Action: domain.ActionUpdate, Before: before, After: cloneRecipe(current)})
	return cloneRecipe(current), nil
}

// DeleteRecipe removes a recipe from the transaction state.
func (tx *transaction) DeleteRecipe(id string) error {
	current, ok := tx.state.recipes[id]
	if !ok {
		return fmt.Errorf("recipe %q not found", id)
	}
	for _, grow := range tx.state.grows {
		if grow.RecipeID != nil && *grow.RecipeID == id {
			return fmt.Errorf("recipe %q still referenced by grow %q", id, grow.ID)
		}
	}
	delete(tx.state.recipes, id)
	tx.recordChange(Change{Entity: domain.EntityRecipe, Action: domain.ActionDelete, Before: cloneRecipe(current)})
	return nil
}

// CreateLocation stores a new location within the transaction.
func (tx *transaction) CreateLocation(l Location) (Location, error) {
	if l.ID == "" {
		l.ID = tx.store.newID()
	}
	if _, exists := tx.state.locations[l.ID]; exists {
		return Location{}, fmt.Errorf("location %q already exists", l.ID)
	}
	if l.ParentID != nil {
		if _, ok := tx.state.locations[*l.ParentID]; !ok {
			return Location{}, fmt.Errorf("location parent %q not found", *l.ParentID)
		}
	}
	l.CreatedAt = tx.now
	l.UpdatedAt = tx.now
	tx.state.locations[l.ID] = cloneLocation(l)
	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionCreate, After: cloneLocation(l)})
	return cloneLocation(l), nil
}

// UpdateLocation mutates a location using the provided mutator function.
func (tx *transaction) UpdateLocation(id string, mutator func(*Location) error) (Location, error) {
	current, ok := tx.state.locations[id]
	if !ok {
		return Location{}, fmt.Errorf("location %q not found", id)
	}
	before := cloneLocation(current)
	if err := mutator(&current); err != nil {
		return Location{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.locations[id] = cloneLocation(current)
	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionUpdate, Before: before, After: cloneLocation(current)})
	return cloneLocation(current), nil
}

// DeleteLocation removes a location; children and occupants must be moved first.
func (tx *transaction) DeleteLocation(id string) error {
	current, ok := tx.state.locations[id]
	if !ok {
		return fmt.Errorf("location %q not found", id)
	}
	for _, child := range tx.state.locations {
		if child.ParentID != nil && *child.ParentID == id {
			return fmt.Errorf("location %q still has child location %q", id, child.ID)
		}
	}
	for _, grow := range tx.state.grows {
		if grow.LocationID != nil && *grow.LocationID == id {
			return fmt.Errorf("location %q still holds grow %q", id, grow.ID)
		}
	}
	for _, culture := range tx.state.cultures {
		if culture.LocationID != nil && *culture.LocationID == id {
			return fmt.Errorf("location %q still holds culture %q", id, culture.ID)
		}
	}
	delete(tx.state.locations, id)
	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionDelete, Before: cloneLocation(current)})
	return nil
}

// CreateVessel stores a new vessel within the transaction.
func (tx *transaction) CreateVessel(v Vessel) (Vessel, error) {
	if v.ID == "" {
		v.ID = tx.store.newID()
	}
	if _, exists := tx.state.vessels[v.ID]; exists {
		return Vessel{}, fmt.Errorf("vessel %q already exists", v.ID)
	}
	v.CreatedAt = tx.now
	v.UpdatedAt = tx.now
	tx.state.vessels[v.ID] = cloneVessel(v)
	tx.recordChange(Change{Entity: domain.EntityVessel, Action: domain.ActionCreate, After: cloneVessel(v)})
	return cloneVessel(v), nil
}

// UpdateVessel mutates a vessel using the provided mutator function.
func (tx *transaction) UpdateVessel(id string, mutator func(*Vessel) error) (Vessel, error) {
	current, ok := tx.state.vessels[id]
	if !ok {
		return Vessel{}, fmt.Errorf("vessel %q not found", id)
	}
	before := cloneVessel(current)
	if err := mutator(&current); err != nil {
		return Vessel{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.vessels[id] = cloneVessel(current)
	tx.recordChange(Change{Entity: domain.EntityVessel, Action: domain.ActionUpdate, Before: before, After: cloneVessel(current)})
	return cloneVessel(current), nil
}

// DeleteVessel removes a vessel from the transaction state.
func (tx *transaction) DeleteVessel(id string) error {
	current, ok := tx.state.vessels[id]
	if !ok {
		return fmt.Errorf("vessel %q not found", id)
	}
	delete(tx.state.vessels, id)
	tx.recordChange(Change{Entity: domain.EntityVessel, Action: domain.ActionDelete, Before: cloneVessel(current)})
	return nil
}

// CreateSupplier stores a new supplier within the transaction.
func (tx *transaction) CreateSupplier(s Supplier) (Supplier, error) {
	if s.ID == "" {
		s.ID = tx.store.newID()
	}
	if _, exists := tx.state.suppliers[s.ID]; exists {
		return Supplier{}, fmt.Errorf("supplier %q already exists", s.ID)
	}
	s.CreatedAt = tx.now
	s.UpdatedAt = tx.now
	tx.state.suppliers[s.ID] = cloneSupplier(s)
	tx.recordChange(Change{Entity: domain.EntitySupplier, Action: domain.ActionCreate, After: cloneSupplier(s)})
	return cloneSupplier(s), nil
}

// UpdateSupplier mutates a supplier using the provided mutator function.
func (tx *transaction) UpdateSupplier(id string, mutator func(*Supplier) error) (Supplier, error) {
	current, ok := tx.state.suppliers[id]
	if !ok {
		return Supplier{}, fmt.Errorf("supplier %q not found", id)
	}
	before := cloneSupplier(current)
	if err := mutator(&current); err != nil {
		return Supplier{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.suppliers[id] = cloneSupplier(current)
	tx.recordChange(Change{Entity: domain.EntitySupplier, Action: domain.ActionUpdate, Before: before, After: cloneSupplier(current)})
	return cloneSupplier(current), nil
}

// DeleteSupplier removes a supplier from the transaction state.
func (tx *transaction) DeleteSupplier(id string) error {
	current, ok := tx.state.suppliers[id]
	if !ok {
		return fmt.Errorf("supplier %q not found", id)
	}
	for _, order := range tx.state.orders {
		if order.SupplierID == id {
			return fmt.Errorf("supplier %q still referenced by purchase order %q", id, order.ID)
		}
	}
	delete(tx.state.suppliers, id)
	tx.recordChange(Change{Entity: domain.EntitySupplier, Action: domain.ActionDelete, Before: cloneSupplier(current)})
	return nil
}

// CreateReferenceValue stores a new lookup record within the transaction.
func (tx *transaction) CreateReferenceValue(r ReferenceValue) (ReferenceValue, error) {
	if r.Kind == "" {
		return ReferenceValue{}, fmt.Errorf("reference value kind required")
	}
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.refs[r.ID]; exists {
		return ReferenceValue{}, fmt.Errorf("reference value %q already exists", r.ID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.refs[r.ID] = cloneReferenceValue(r)
	tx.recordChange(Change{Entity: domain.EntityType(r.Kind), Action: domain.ActionCreate, After: cloneReferenceValue(r)})
	return cloneReferenceValue(r), nil
}

// UpdateReferenceValue mutates a lookup record using the provided mutator function.
func (tx *transaction) UpdateReferenceValue(id string, mutator func(*ReferenceValue) error) (ReferenceValue, error) {
	current, ok := tx.state.refs[id]
	if !ok {
		return ReferenceValue{}, fmt.Errorf("reference value %q not found", id)
	}
	before := cloneReferenceValue(current)
	kind := current.Kind
	if err := mutator(&current); err != nil {
		return ReferenceValue{}, err
	}
	current.ID = id
	current.Kind = kind
	current.UpdatedAt = tx.now
	tx.state.refs[id] = cloneReferenceValue(current)
	tx.recordChange(Change{Entity: domain.EntityType(kind), Action: domain.ActionUpdate, Before: before, After: cloneReferenceValue(current)})
	return cloneReferenceValue(current), nil
}

// DeleteReferenceValue removes a lookup record from the transaction state.
func (tx *transaction) DeleteReferenceValue(id string) error {
	current, ok := tx.state.refs[id]
	if !ok {
		return fmt.Errorf("reference value %q not found", id)
	}
	delete(tx.state.refs, id)
	tx.recordChange(Change{Entity: domain.EntityType(current.Kind), Action: domain.ActionDelete, Before: cloneReferenceValue(current)})
	return nil
}

// CreateInventoryItem stores a new inventory item within the transaction.
func (tx *transaction) CreateInventoryItem(i InventoryItem) (InventoryItem, error) {
	if i.ID == "" {
		i.ID = tx.store.newID()
	}
	if _, exists := tx.state.items[i.ID]; exists {
		return InventoryItem{}, fmt.Errorf("inventory item %q already exists", i.ID)
	}
	i.CreatedAt = tx.now
	i.UpdatedAt = tx.now
	tx.state.items[i.ID] = cloneInventoryItem(i)
	tx.recordChange(Change{Entity: domain.EntityInventoryItem, Action: domain.ActionCreate, After: cloneInventoryItem(i)})
	return cloneInventoryItem(i), nil
}

// UpdateInventoryItem mutates an inventory item using the provided mutator function.
func (tx *transaction) UpdateInventoryItem(id string, mutator func(*InventoryItem) error) (InventoryItem, error) {
	current, ok := tx.state.items[id]
	if !ok {
		return InventoryItem{}, fmt.Errorf("inventory item %q not found", id)
	}
	before := cloneInventoryItem(current)
	if err := mutator(&current); err != nil {
		return InventoryItem{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.items[id] = cloneInventoryItem(current)
	tx.recordChange(Change{Entity: domain.EntityInventoryItem, Action: domain.ActionUpdate, Before: before, After: cloneInventoryItem(current)})
	return cloneInventoryItem(current), nil
}

// DeleteInventoryItem removes an inventory item from the transaction state.
func (tx *transaction) DeleteInventoryItem(id string) error {
	current, ok := tx.state.items[id]
	if !ok {
		return fmt.Errorf("inventory item %q not found", id)
	}
	for _, lot := range tx.state.lots {
		if lot.ItemID == id {
			return fmt.Errorf("inventory item %q still referenced by lot %q", id, lot.ID)
		}
	}
	delete(tx.state.items, id)
	tx.recordChange(Change{Entity: domain.EntityInventoryItem, Action: domain.ActionDelete, Before: cloneInventoryItem(current)})
	return nil
}

// CreateInventoryLot stores a new inventory lot within the transaction.
func (tx *transaction) CreateInventoryLot(l InventoryLot) (InventoryLot, error) {
	if l.ItemID == "" {
		return InventoryLot{}, fmt.Errorf("inventory lot item id required")
	}
	if _, ok := tx.state.items[l.ItemID]; !ok {
		return InventoryLot{}, fmt.Errorf("inventory item %q not found", l.ItemID)
	}
	if l.ID == "" {
		l.ID = tx.store.newID()
	}
	if _, exists := tx.state.lots[l.ID]; exists {
		return InventoryLot{}, fmt.Errorf("inventory lot %q already exists", l.ID)
	}
	l.CreatedAt = tx.now
	l.UpdatedAt = tx.now
	tx.state.lots[l.ID] = cloneInventoryLot(l)
	tx.recordChange(Change{Entity: domain.EntityInventoryLot, Action: domain.ActionCreate, After: cloneInventoryLot(l)})
	return cloneInventoryLot(l), nil
}

// UpdateInventoryLot mutates an inventory lot using the provided mutator function.
func (tx *transaction) UpdateInventoryLot(id string, mutator func(*InventoryLot) error) (InventoryLot, error) {
	current, ok := tx.state.lots[id]
	if !ok {
		return InventoryLot{}, fmt.Errorf("inventory lot %q not found", id)
	}
	before := cloneInventoryLot(current)
	if err := mutator(&current); err != nil {
		return InventoryLot{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.lots[id] = cloneInventoryLot(current)
	tx.recordChange(Change{Entity: domain.EntityInventoryLot, Action: domain.ActionUpdate, Before: before, After: cloneInventoryLot(current)})
	return cloneInventoryLot(current), nil
}

// DeleteInventoryLot removes an inventory lot from the transaction state.
func (tx *transaction) DeleteInventoryLot(id string) error {
	current, ok := tx.state.lots[id]
	if !ok {
		return fmt.Errorf("inventory lot %q not found", id)
	}
	delete(tx.state.lots, id)
	tx.recordChange(Change{Entity: domain.EntityInventoryLot, Action: domain.ActionDelete, Before: cloneInventoryLot(current)})
	return nil
}

// CreatePurchaseOrder stores a new purchase order within the transaction.
func (tx *transaction) CreatePurchaseOrder(o PurchaseOrder) (PurchaseOrder, error) {
	if o.SupplierID == "" {
		return PurchaseOrder{}, fmt.Errorf("purchase order supplier id required")
	}
	if _, ok := tx.state.suppliers[o.SupplierID]; !ok {
		return PurchaseOrder{}, fmt.Errorf("supplier %q not found", o.SupplierID)
	}
	if o.ID == "" {
		o.ID = tx.store.newID()
	}
	if _, exists := tx.state.orders[o.ID]; exists {
		return PurchaseOrder{}, fmt.Errorf("purchase order %q already exists", o.ID)
	}
	if o.Status == "" {
		o.Status = domain.PurchaseOrderDraft
	}
	o.CreatedAt = tx.now
	o.UpdatedAt = tx.now
	tx.state.orders[o.ID] = clonePurchaseOrder(o)
	tx.recordChange(Change{Entity: domain.EntityPurchaseOrder, Action: domain.ActionCreate, After: clonePurchaseOrder(o)})
	return clonePurchaseOrder(o), nil
}

// UpdatePurchaseOrder mutates a purchase order using the provided mutator function.
func (tx *transaction) UpdatePurchaseOrder(id string, mutator func(*PurchaseOrder) error) (PurchaseOrder, error) {
	current, ok := tx.state.orders[id]
	if !ok {
		return PurchaseOrder{}, fmt.Errorf("purchase order %q not found", id)
	}
	before := clonePurchaseOrder(current)
	if err := mutator(&current); err != nil {
		return PurchaseOrder{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.orders[id] = clonePurchaseOrder(current)
	tx.recordChange(Change{Entity: domain.EntityPurchaseOrder, Action: domain.ActionUpdate, Before: before, After: clonePurchaseOrder(current)})
	return clonePurchaseOrder(current), nil
}

// DeletePurchaseOrder removes a purchase order from the transaction state.
func (tx *transaction) DeletePurchaseOrder(id string) error {
	current, ok := tx.state.orders[id]
	if !ok {
		return fmt.Errorf("purchase order %q not found", id)
	}
	delete(tx.state.orders, id)
	tx.recordChange(Change{Entity: domain.EntityPurchaseOrder, Action: domain.ActionDelete, Before: clonePurchaseOrder(current)})
	return nil
}

// CreateTask stores a new task within the transaction.
func (tx *transaction) CreateTask(t TaskEntry) (TaskEntry, error) {
	if t.ID == "" {
		t.ID = tx.store.newID()
	}
	if _, exists := tx.state.tasks[t.ID]; exists {
		return TaskEntry{}, fmt.Errorf("task %q already exists", t.ID)
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.tasks[t.ID] = cloneTask(t)
	tx.recordChange(Change{Entity: domain.EntityTask, Action: domain.ActionCreate, After: cloneTask(t)})
	return cloneTask(t), nil
}

// UpdateTask mutates a task using the provided mutator function.
func (tx *transaction) UpdateTask(id string, mutator func(*TaskEntry) error) (TaskEntry, error) {
	current, ok := tx.state.tasks[id]
	if !ok {
		return TaskEntry{}, fmt.Errorf("task %q not found", id)
	}
	before := cloneTask(current)
	if err := mutator(&current); err != nil {
		return TaskEntry{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.tasks[id] = cloneTask(current)
	tx.recordChange(Change{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})
	return cloneTask(current), nil
}

// DeleteTask removes a task from the transaction state.
func (tx *transaction) DeleteTask(id string) error {
	current, ok := tx.state.tasks[id]
	if !ok {
		return fmt.Errorf("task %q not found", id)
	}
	delete(tx.state.tasks, id)
	tx.recordChange(Change{Entity: domain.EntityTask, Action: domain.ActionDelete, Before: cloneTask(current)})
	return nil
}
