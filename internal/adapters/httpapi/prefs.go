package httpapi

import (
	"net/http"

	"sporely/internal/prefs"
)

// PrefsHandler exposes the onboarding preference document.
type PrefsHandler struct {
	Store *prefs.Store
}

// NewPrefsHandler constructs a preferences HTTP handler.
func NewPrefsHandler(store *prefs.Store) *PrefsHandler {
	return &PrefsHandler{Store: store}
}

func (h *PrefsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusInternalServerError, "preference store not configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := h.Store.Load(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"preferences": p})
	case http.MethodPut:
		var p prefs.Preferences
		if err := decodeJSON(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.Store.Save(r.Context(), p); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"preferences": p})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
