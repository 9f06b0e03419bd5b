package httpapi

import (
	"net/http"

	"sporely/internal/blob"
	"sporely/internal/core"
	"sporely/internal/draft"
	"sporely/internal/prefs"
	"sporely/internal/verify"
)

// Deps carries the wired subsystems the HTTP surface exposes. Nil fields
// leave their routes unmounted.
type Deps struct {
	Service *core.Service
	Stack   *draft.Stack
	Blobs   blob.Store
	Verify  *verify.Handler
	Prefs   *prefs.Store
	Metrics http.Handler
}

// NewMux assembles the full route table. More specific patterns win, so the
// draft, verification and attachment handlers shadow the generic entity
// fallback under /api/v1/.
func NewMux(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	if deps.Service != nil {
		mux.Handle("/api/v1/", NewEntitiesHandler(deps.Service))
	}
	if deps.Stack != nil {
		drafts := NewDraftsHandler(deps.Stack)
		mux.Handle("/api/v1/drafts", drafts)
		mux.Handle("/api/v1/drafts/", drafts)
		mux.Handle("/api/v1/entity-types", drafts)
	}
	if deps.Verify != nil {
		mux.Handle("/api/v1/verification-codes", deps.Verify)
		mux.Handle("/api/v1/verification-codes/", deps.Verify)
	}
	if deps.Blobs != nil {
		mux.Handle("/api/v1/attachments/", NewAttachmentsHandler(deps.Blobs, deps.Service))
	}
	if deps.Prefs != nil {
		mux.Handle("/api/v1/preferences", NewPrefsHandler(deps.Prefs))
	}
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	return mux
}
