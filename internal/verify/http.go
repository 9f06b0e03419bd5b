package verify

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Handler exposes verification-code sending and confirmation over HTTP.
type Handler struct {
	Sender *Sender
}

// NewHandler constructs a verification HTTP handler.
func NewHandler(sender *Sender) *Handler {
	return &Handler{Sender: sender}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Sender == nil {
		writeError(w, http.StatusInternalServerError, "verification sender not configured")
		return
	}
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/verification-codes":
		h.handleSend(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/verification-codes/confirm":
		h.handleConfirm(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.Sender.Send(r.Context(), req); err != nil {
		var delivery DeliveryError
		if errors.As(err, &delivery) {
			writeError(w, http.StatusBadGateway, delivery.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "sent"})
}

type confirmRequest struct {
	Channel Channel `json:"type"`
	UserID  string  `json:"user_id"`
	Code    string  `json:"code"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !ValidChannel(req.Channel) || req.UserID == "" || req.Code == "" {
		writeError(w, http.StatusUnprocessableEntity, "type, user_id and code required")
		return
	}
	ok, err := h.Sender.Confirm(r.Context(), req.UserID, req.Channel, req.Code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"verified": ok})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
