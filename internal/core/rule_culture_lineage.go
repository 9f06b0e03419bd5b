package core

import (
	"context"
	"fmt"

	"sporely/pkg/domain"
)

// NewCultureLineageRule returns the rule validating culture lineage: parent
// references must exist, parent chains must be acyclic, and transfers from a
// contaminated parent produce a warning.
func NewCultureLineageRule() domain.Rule {
	return cultureLineageRule{}
}

type cultureLineageRule struct{}

func (cultureLineageRule) Name() string { return "culture_lineage" }

func (cultureLineageRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, culture := range view.ListCultures() {
		if culture.ParentID == nil {
			continue
		}
		parent, ok := view.FindCulture(*culture.ParentID)
		if !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "culture_lineage",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("culture %s (%s) references unknown parent %s", culture.Label, culture.ID, *culture.ParentID),
				Entity:   domain.EntityCulture,
				EntityID: culture.ID,
			})
			continue
		}
		if hasLineageCycle(view, culture) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "culture_lineage",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("culture %s (%s) introduces a lineage cycle", culture.Label, culture.ID),
				Entity:   domain.EntityCulture,
				EntityID: culture.ID,
			})
			continue
		}
		if parent.Status == domain.CultureStatusContaminated {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "culture_lineage",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("culture %s (%s) descends from contaminated culture %s", culture.Label, culture.ID, parent.ID),
				Entity:   domain.EntityCulture,
				EntityID: culture.ID,
			})
		}
	}
	return res, nil
}

// hasLineageCycle walks the parent chain from c looking for a repeat visit.
func hasLineageCycle(view domain.RuleView, c domain.Culture) bool {
	seen := map[string]bool{c.ID: true}
	current := c
	for current.ParentID != nil {
		parent, ok := view.FindCulture(*current.ParentID)
		if !ok {
			return false
		}
		if seen[parent.ID] {
			return true
		}
		seen[parent.ID] = true
		current = parent
	}
	return false
}
