package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/hotwheels-storefront/internal/auth"
	"github.com/joao-fontenele/hotwheels-storefront/internal/cart"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), cart.SessionID(r.Context()))
	if err != nil {
		h.logger.Error("failed to summarize cart", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

type placeOrderResponse struct {
	Order   *domain.Order `json:"order"`
	Message string        `json:"message"`
}

func (h *Handler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var customer domain.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := ""
	if id := auth.FromContext(r.Context()); id != nil {
		userID = id.UserID
	}

	order, err := h.service.PlaceOrder(r.Context(), cart.SessionID(r.Context()), userID, customer)
	if err != nil {
		h.handlePlaceOrderError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, placeOrderResponse{
		Order:   order,
		Message: "Order placed successfully! Thank you, " + order.Customer.Name,
	})
}

func (h *Handler) handlePlaceOrderError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var submissionErr *SubmissionError

	switch {
	case errors.As(err, &validationErr):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": validationErr.Message(),
			"field": validationErr.Field,
		})
	case errors.Is(err, ErrSubmissionInFlight):
		h.writeError(w, http.StatusConflict, "your order is already being submitted")
	case errors.As(err, &submissionErr):
		h.writeError(w, http.StatusServiceUnavailable, "we could not place your order, your cart has been kept so you can try again")
	default:
		h.logger.Error("failed to place order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
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
