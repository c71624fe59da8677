package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/hotwheels-storefront/internal/cart"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

// SessionReader gives access to the shopper's session, whose currency is
// the display default.
type SessionReader interface {
	Get(ctx context.Context, id string) (*cart.Session, error)
}

type Handler struct {
	repo     *Repository
	sessions SessionReader
	logger   *slog.Logger
}

// NewHandler builds the catalog handler. sessions may be nil, in which case
// prices display in USD unless ?currency= says otherwise.
func NewHandler(repo *Repository, sessions SessionReader, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

type productView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        string          `json:"price"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
	DisplayPrice string          `json:"display_price"`
	Image        string          `json:"image"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func newProductView(p domain.Product, currency money.Currency) productView {
	return productView{
		ID:           p.ID,
		Name:         p.Name,
		Price:        money.FormatPrice(p.Price),
		PriceUSD:     p.Price,
		DisplayPrice: money.Format(p.Price, currency),
		Image:        p.Image,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// displayCurrency prefers ?currency=, then the session's selection.
func (h *Handler) displayCurrency(r *http.Request) money.Currency {
	if c, err := money.ParseCurrency(r.URL.Query().Get("currency")); err == nil {
		return c
	}

	id := cart.SessionID(r.Context())
	if h.sessions == nil || id == "" {
		return money.USD
	}
	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to load session currency", "error", err)
		return money.USD
	}
	return session.Currency
}

// HandleList serves the catalog. limit trims the list, as the home page does
// for its featured cars.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if limit < len(products) {
			products = products[:limit]
		}
	}

	currency := h.displayCurrency(r)
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p, currency))
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	h.writeJSON(w, http.StatusOK, newProductView(*product, h.displayCurrency(r)))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.repo.Create(r.Context(), input)
	if err != nil {
		h.handleWriteError(w, err, "")
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	h.writeJSON(w, http.StatusCreated, newProductView(*product, money.USD))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.repo.Update(r.Context(), id, input)
	if err != nil {
		h.handleWriteError(w, err, id)
		return
	}

	h.logger.Info("product updated", "product_id", id)
	h.writeJSON(w, http.StatusOK, newProductView(*product, money.USD))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.handleWriteError(w, err, id)
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWriteError(w http.ResponseWriter, err error, id string) {
	var fieldErr *FieldError
	switch {
	case errors.As(err, &fieldErr):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": fieldErr.Message,
			"field": fieldErr.Field,
		})
	case errors.Is(err, ErrNotFound):
		h.writeError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error("failed to write product", "error", err, "product_id", id)
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
