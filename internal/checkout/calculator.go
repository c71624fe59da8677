// Package checkout turns a session cart into an order and submits it.
package checkout

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/hotwheels-storefront/internal/cart"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

const orderNumberPrefix = "HW-"

// OrderNumbers issues time-derived order numbers that strictly increase
// within the process.
type OrderNumbers struct {
	mu   sync.Mutex
	last int64
}

func (n *OrderNumbers) Next(now time.Time) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= n.last {
		ms = n.last + 1
	}
	n.last = ms
	return fmt.Sprintf("%s%d", orderNumberPrefix, ms)
}

type Calculator struct {
	now     func() time.Time
	numbers *OrderNumbers
}

func NewCalculator() *Calculator {
	return &Calculator{
		now:     time.Now,
		numbers: &OrderNumbers{},
	}
}

// BuildOrder validates the customer details and the cart, in that order,
// and returns a pending order priced in USD. The ledger is not modified.
func (c *Calculator) BuildOrder(ledger *cart.Ledger, customer domain.CustomerInfo, currency money.Currency) (*domain.Order, error) {
	customer = trimCustomer(customer)
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	if ledger == nil || ledger.IsEmpty() {
		return nil, &ValidationError{Err: ErrEmptyCart}
	}

	now := c.now().UTC()
	lines := ledger.Lines()
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Price:     line.Price,
			Quantity:  line.Quantity,
			LineTotal: line.Total(),
		})
	}

	total := ledger.TotalUSD()
	return &domain.Order{
		OrderNumber:    c.numbers.Next(now),
		Customer:       customer,
		Items:          items,
		TotalAmount:    total,
		TotalDisplayed: money.Convert(total, currency),
		Currency:       currency,
		Status:         domain.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func trimCustomer(c domain.CustomerInfo) domain.CustomerInfo {
	return domain.CustomerInfo{
		Email:   strings.TrimSpace(c.Email),
		Name:    strings.TrimSpace(c.Name),
		Address: strings.TrimSpace(c.Address),
		Phone:   strings.TrimSpace(c.Phone),
	}
}

func validateCustomer(c domain.CustomerInfo) error {
	required := []struct {
		field string
		value string
	}{
		{"email", c.Email},
		{"name", c.Name},
		{"address", c.Address},
		{"phone", c.Phone},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Err: ErrMissingField}
		}
	}
	if !domain.ValidEmail(c.Email) {
		return &ValidationError{Field: "email", Err: ErrInvalidEmail}
	}
	return nil
}

type SummaryLine struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    string          `json:"unit_price"`
	LineTotalUSD decimal.Decimal `json:"line_total_usd"`
	LineTotal    string          `json:"line_total"`
}

// Summary is the order summary shown before the shopper submits.
type Summary struct {
	Lines          []SummaryLine   `json:"lines"`
	ItemCount      int             `json:"item_count"`
	Subtotal       string          `json:"subtotal"`
	Shipping       string          `json:"shipping"`
	TotalUSD       decimal.Decimal `json:"total_usd"`
	TotalDisplayed decimal.Decimal `json:"total_displayed"`
	Total          string          `json:"total"`
	Currency       money.Currency  `json:"currency"`
}

func Summarize(ledger *cart.Ledger, currency money.Currency) Summary {
	lines := ledger.Lines()
	total := ledger.TotalUSD()
	summary := Summary{
		Lines:          make([]SummaryLine, 0, len(lines)),
		ItemCount:      ledger.ItemCount(),
		Subtotal:       money.Format(total, currency),
		Shipping:       "FREE",
		TotalUSD:       total,
		TotalDisplayed: money.Convert(total, currency),
		Total:          money.Format(total, currency),
		Currency:       currency,
	}
	for _, line := range lines {
		summary.Lines = append(summary.Lines, SummaryLine{
			ProductID:    line.ProductID,
			Name:         line.Name,
			Quantity:     line.Quantity,
			UnitPrice:    money.Format(line.Price, currency),
			LineTotalUSD: line.Total(),
			LineTotal:    money.Format(line.Total(), currency),
		})
	}
	return summary
}
