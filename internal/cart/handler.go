package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
	"github.com/joao-fontenele/hotwheels-storefront/internal/telemetry"
)

// ProductFinder returns (nil, nil) for unknown products.
type ProductFinder interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type Handler struct {
	sessions *Sessions
	products ProductFinder
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

func NewHandler(sessions *Sessions, products ProductFinder, metrics *telemetry.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		products: products,
		metrics:  metrics,
		logger:   logger,
	}
}

type lineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type cartView struct {
	Lines     []lineView     `json:"lines"`
	ItemCount int            `json:"item_count"`
	TotalUSD  string         `json:"total_usd"`
	Total     string         `json:"total"`
	Currency  money.Currency `json:"currency"`
}

func newCartView(s *Session) cartView {
	lines := s.Cart.Lines()
	view := cartView{
		Lines:     make([]lineView, 0, len(lines)),
		ItemCount: s.Cart.ItemCount(),
		TotalUSD:  s.Cart.TotalUSD().StringFixed(2),
		Total:     money.Format(s.Cart.TotalUSD(), s.Currency),
		Currency:  s.Currency,
	}
	for _, line := range lines {
		view.Lines = append(view.Lines, lineView{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Price:     money.Format(line.Price, s.Currency),
			Quantity:  line.Quantity,
			LineTotal: money.Format(line.Total(), s.Currency),
		})
	}
	return view
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.logger.Error("failed to load session", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, newCartView(session))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.Get(r.Context(), req.ProductID)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", req.ProductID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	session, err := h.sessions.Update(r.Context(), SessionID(r.Context()), func(s *Session) error {
		s.Cart.AddItem(*product)
		return nil
	})
	if err != nil {
		h.logger.Error("failed to add item", "error", err, "product_id", product.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.CartItemAdded(r.Context())
	h.logger.Info("item added to cart", "product_id", product.ID, "item_count", session.Cart.ItemCount())
	h.writeJSON(w, http.StatusOK, newCartView(session))
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessions.Update(r.Context(), SessionID(r.Context()), func(s *Session) error {
		s.Cart.UpdateQuantity(productID, *req.Quantity)
		return nil
	})
	if err != nil {
		h.logger.Error("failed to update quantity", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, newCartView(session))
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	session, err := h.sessions.Update(r.Context(), SessionID(r.Context()), func(s *Session) error {
		s.Cart.RemoveItem(productID)
		return nil
	})
	if err != nil {
		h.logger.Error("failed to remove item", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, newCartView(session))
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Update(r.Context(), SessionID(r.Context()), func(s *Session) error {
		s.Cart.Clear()
		return nil
	})
	if err != nil {
		h.logger.Error("failed to clear cart", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, newCartView(session))
}

type currencyView struct {
	Currency     money.Currency `json:"currency"`
	Symbol       string         `json:"symbol"`
	ExchangeRate int            `json:"exchange_rate"`
}

func newCurrencyView(c money.Currency) currencyView {
	return currencyView{Currency: c, Symbol: c.Symbol(), ExchangeRate: money.ExchangeRate}
}

func (h *Handler) HandleGetCurrency(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.logger.Error("failed to load session", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, newCurrencyView(session.Currency))
}

type setCurrencyRequest struct {
	Currency string `json:"currency"`
}

func (h *Handler) HandleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req setCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	currency, err := money.ParseCurrency(req.Currency)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unsupported currency")
		return
	}

	h.updateCurrency(w, r, func(money.Currency) money.Currency { return currency })
}

func (h *Handler) HandleToggleCurrency(w http.ResponseWriter, r *http.Request) {
	h.updateCurrency(w, r, money.Currency.Toggle)
}

func (h *Handler) updateCurrency(w http.ResponseWriter, r *http.Request, next func(money.Currency) money.Currency) {
	session, err := h.sessions.Update(r.Context(), SessionID(r.Context()), func(s *Session) error {
		s.Currency = next(s.Currency)
		return nil
	})
	if err != nil {
		h.logger.Error("failed to update currency", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("currency changed", "currency", session.Currency)
	h.writeJSON(w, http.StatusOK, newCurrencyView(session.Currency))
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
