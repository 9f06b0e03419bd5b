package memory

import (
	"sort"

	"sporely/pkg/domain"
)

// transactionView exposes read-only access over a memoryState for rules and
// callers of View. Lists are cloned and sorted by ID for determinism.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) domain.RuleView {
	return &transactionView{state: state}
}

func (v *transactionView) ListStrains() []Strain {
	out := make([]Strain, 0, len(v.state.strains))
	for _, s := range v.state.strains {
		out = append(out, cloneStrain(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *transactionView) ListCultures() []Culture {
	out := make([]Culture, 0, len(v.state.cultures))
	for _, c := range v.state.cultures {
		out = append(out, cloneCulture(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *transactionView) ListGrows() []Grow {
	out := make([]Grow, 0, len(v.state.grows))
	for _, g := range v.state.grows {
		out = append(out, cloneGrow(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *transactionView) ListRecipes() []Recipe {
	out := make([]Recipe, 0, len(v.state.recipes))
	for _, r := range v.state.recipes {
		out = append(out, cloneRecipe(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *transactionView) ListLocations() []Location {
	out := make([]Location, 0, len(v.state.locations))
	for _, l := range v.state.locations {
		out = append(out, cloneLocation(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *transactionView) ListInventoryItems() []InventoryItem {
	out := make([]InventoryItem, 0, len(v.state.items))
	for _, i := range v.state.items {
		out = append(out, cloneInventoryItem(i))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *transactionView) ListInventoryLots() []InventoryLot {
	out := make([]InventoryLot, 0, len(v.state.lots))
	for _, l := range v.state.lots {
		out = append(out, cloneInventoryLot(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *transactionView) FindStrain(id string) (Strain, bool) {
	s, ok := v.state.strains[id]
	if !ok {
		return Strain{}, false
	}
	return cloneStrain(s), true
}

func (v *transactionView) FindCulture(id string) (Culture, bool) {
	c, ok := v.state.cultures[id]
	if !ok {
		return Culture{}, false
	}
	return cloneCulture(c), true
}

func (v *transactionView) FindGrow(id string) (Grow, bool) {
	g, ok := v.state.grows[id]
	if !ok {
		return Grow{}, false
	}
	return cloneGrow(g), true
}

func (v *transactionView) FindRecipe(id string) (Recipe, bool) {
	r, ok := v.state.recipes[id]
	if !ok {
		return Recipe{}, false
	}
	return cloneRecipe(r), true
}

func (v *transactionView) FindLocation(id string) (Location, bool) {
	l, ok := v.state.locations[id]
	if !ok {
		return Location{}, false
	}
	return cloneLocation(l), true
}

func (v *transactionView) FindInventoryItem(id string) (InventoryItem, bool) {
	i, ok := v.state.items[id]
	if !ok {
		return InventoryItem{}, false
	}
	return cloneInventoryItem(i), true
}

func (v *transactionView) FindInventoryLot(id string) (InventoryLot, bool) {
	l, ok := v.state.lots[id]
	if !ok {
		return InventoryLot{}, false
	}
	return cloneInventoryLot(l), true
}
