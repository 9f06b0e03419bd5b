package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sporely/internal/blob"
	"sporely/internal/core"
	"sporely/pkg/domain"
)

// AttachmentsHandler stores and serves photos and documents attached to lab
// records. Objects live in the blob store keyed by entity type and ID; grow
// records additionally track their attachment keys inline.
type AttachmentsHandler struct {
	Blobs   blob.Store
	Service *core.Service
}

// NewAttachmentsHandler constructs an attachments HTTP handler.
func NewAttachmentsHandler(blobs blob.Store, svc *core.Service) *AttachmentsHandler {
	return &AttachmentsHandler{Blobs: blobs, Service: svc}
}

func (h *AttachmentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Blobs == nil {
		writeError(w, http.StatusInternalServerError, "blob store not configured")
		return
	}

	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1/attachments/"), "/")
	segments := strings.Split(path, "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		http.NotFound(w, r)
		return
	}
	entityType := domain.EntityType(segments[0])
	entityID := segments[1]

	switch {
	case len(segments) == 2 && r.Method == http.MethodPost:
		h.handleUpload(w, r, entityType, entityID)
	case len(segments) == 2 && r.Method == http.MethodGet:
		h.handleList(w, r, entityType, entityID)
	case len(segments) == 2 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, entityType, entityID)
	case len(segments) == 3 && segments[2] == "url" && r.Method == http.MethodGet:
		h.handlePresign(w, r)
	case len(segments) == 3 && segments[2] == "download" && r.Method == http.MethodGet:
		h.handleDownload(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AttachmentsHandler) handleUpload(w http.ResponseWriter, r *http.Request, entityType domain.EntityType, entityID string) {
	key := blob.AttachmentKey(entityType, entityID)
	info, err := h.Blobs.Put(r.Context(), key, r.Body, blob.PutOptions{
		ContentType: r.Header.Get("Content-Type"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Grow records carry their attachment keys so exports and deletes can
	// account for them without a blob listing.
	if entityType == domain.EntityGrow && h.Service != nil {
		_, _, err := h.Service.UpdateGrow(r.Context(), entityID, func(grow *domain.Grow) error {
			grow.AttachmentKeys = append(grow.AttachmentKeys, key)
			return nil
		})
		if err != nil {
			_, _ = h.Blobs.Delete(r.Context(), key)
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"attachment": info})
}

func (h *AttachmentsHandler) handleList(w http.ResponseWriter, r *http.Request, entityType domain.EntityType, entityID string) {
	infos, err := h.Blobs.List(r.Context(), blob.AttachmentPrefix(entityType, entityID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attachments": infos})
}

func (h *AttachmentsHandler) handleDelete(w http.ResponseWriter, r *http.Request, entityType domain.EntityType, entityID string) {
	key := r.URL.Query().Get("key")
	if key == "" || !strings.HasPrefix(key, blob.AttachmentPrefix(entityType, entityID)) {
		writeError(w, http.StatusUnprocessableEntity, "key query parameter must reference this record")
		return
	}
	deleted, err := h.Blobs.Delete(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "attachment not found")
		return
	}
	if entityType == domain.EntityGrow && h.Service != nil {
		_, _, err := h.Service.UpdateGrow(r.Context(), entityID, func(grow *domain.Grow) error {
			kept := grow.AttachmentKeys[:0]
			for _, k := range grow.AttachmentKeys {
				if k != key {
					kept = append(kept, k)
				}
			}
			grow.AttachmentKeys = kept
			return nil
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("attachment removed but grow record not updated: %v", err))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AttachmentsHandler) handlePresign(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusUnprocessableEntity, "key query parameter required")
		return
	}
	url, err := h.Blobs.PresignURL(r.Context(), key, blob.SignedURLOptions{})
	if errors.Is(err, blob.ErrUnsupported) {
		writeError(w, http.StatusNotImplemented, "signed URLs not supported by this blob driver")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (h *AttachmentsHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusUnprocessableEntity, "key query parameter required")
		return
	}
	info, rc, err := h.Blobs.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "attachment not found")
		return
	}
	defer func() { _ = rc.Close() }()
	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
