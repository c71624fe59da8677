package contact

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var s Submission
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.repo.Submit(r.Context(), s)
	if err != nil {
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": "Please enter a valid " + fieldErr.Field + ".",
				"field": fieldErr.Field,
			})
			return
		}
		h.logger.Error("failed to store contact message", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("contact message received", "message_id", id)
	h.writeJSON(w, http.StatusCreated, map[string]string{
		"id":      id,
		"message": "Your message has been sent!",
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	messages, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list contact messages", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.repo.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "message not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete contact message", "error", err, "message_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
