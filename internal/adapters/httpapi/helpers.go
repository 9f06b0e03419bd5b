// Package httpapi exposes the sporely domain over a JSON HTTP surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sporely/pkg/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

type violationPayload struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Entity   string `json:"entity"`
	EntityID string `json:"entity_id"`
}

// writeDomainError maps transaction failures onto HTTP statuses. Blocking rule
// violations become 409 with the violation list; missing records become 404;
// everything else is a 422 validation failure.
func writeDomainError(w http.ResponseWriter, err error) {
	var ruleErr domain.RuleViolationError
	if errors.As(err, &ruleErr) {
		violations := make([]violationPayload, 0, len(ruleErr.Result.Violations))
		for _, v := range ruleErr.Result.Violations {
			violations = append(violations, violationPayload{
				Rule:     v.Rule,
				Severity: string(v.Severity),
				Message:  v.Message,
				Entity:   string(v.Entity),
				EntityID: v.EntityID,
			})
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      err.Error(),
			"violations": violations,
		})
		return
	}
	if strings.Contains(err.Error(), "not found") {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
