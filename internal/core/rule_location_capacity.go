package core

import (
	"context"
	"fmt"

	"sporely/pkg/domain"
)

// NewLocationCapacityRule returns the default in-transaction rule enforcing
// location capacity constraints. A location's occupancy is the number of
// cultures plus non-terminal grows assigned to it; capacity 0 means unlimited.
func NewLocationCapacityRule() domain.Rule {
	return locationCapacityRule{}
}

type locationCapacityRule struct{}

func (locationCapacityRule) Name() string { return "location_capacity" }

func (locationCapacityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	occupancy := make(map[string]int)
	for _, culture := range view.ListCultures() {
		if culture.LocationID == nil || culture.Status != domain.CultureStatusActive {
			continue
		}
		occupancy[*culture.LocationID]++
	}
	for _, grow := range view.ListGrows() {
		if grow.LocationID == nil {
			continue
		}
		if grow.Stage == domain.StageHarvested || grow.Stage == domain.StageContaminated {
			continue
		}
		occupancy[*grow.LocationID]++
	}

	res := domain.Result{}
	for _, location := range view.ListLocations() {
		if location.Capacity <= 0 {
			continue
		}
		count := occupancy[location.ID]
		if count > location.Capacity {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "location_capacity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("location %s (%s) over capacity: %d/%d occupants", location.Name, location.ID, count, location.Capacity),
				Entity:   domain.EntityLocation,
				EntityID: location.ID,
			})
		}
	}
	return res, nil
}
