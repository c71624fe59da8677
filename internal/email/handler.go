package email

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
)

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !domain.ValidEmail(strings.TrimSpace(msg.To)) {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid recipient")
		return
	}
	if strings.TrimSpace(msg.Subject) == "" {
		h.writeError(w, http.StatusUnprocessableEntity, "subject is required")
		return
	}

	h.logger.Info("email sent", "to", msg.To, "subject", msg.Subject, "body_bytes", len(msg.Body))

	h.writeJSON(w, http.StatusOK, sendResponse{Status: "sent"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
