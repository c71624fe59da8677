// Package cart holds the per-session cart ledger and the session state that
// owns it.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
)

// Line is one product in the cart. Display fields are cached from the
// product at the time it was first added.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Total is the USD amount of the line.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Ledger is an ordered list of cart lines with at most one line per product
// and every quantity >= 1. It has a single owner and is not safe for
// concurrent use.
type Ledger struct {
	lines []Line
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// AddItem increments the quantity of the product's line, or appends a new
// line with quantity 1.
func (l *Ledger) AddItem(p domain.Product) {
	if i := l.index(p.ID); i >= 0 {
		l.lines[i].Quantity++
		return
	}
	l.lines = append(l.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Price:     p.Price,
		Quantity:  1,
	})
}

// UpdateQuantity sets the quantity exactly. A quantity <= 0 removes the line.
func (l *Ledger) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		l.RemoveItem(productID)
		return
	}
	if i := l.index(productID); i >= 0 {
		l.lines[i].Quantity = quantity
	}
}

func (l *Ledger) RemoveItem(productID string) {
	i := l.index(productID)
	if i < 0 {
		return
	}
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
}

func (l *Ledger) Clear() {
	l.lines = nil
}

// ItemCount is the sum of quantities, not the number of lines.
func (l *Ledger) ItemCount() int {
	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

func (l *Ledger) TotalUSD() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.Total())
	}
	return total
}

func (l *Ledger) Len() int {
	return len(l.lines)
}

func (l *Ledger) IsEmpty() bool {
	return len(l.lines) == 0
}

// Lines returns a copy of the lines in insertion order.
func (l *Ledger) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *Ledger) Line(productID string) (Line, bool) {
	if i := l.index(productID); i >= 0 {
		return l.lines[i], true
	}
	return Line{}, false
}

func (l *Ledger) Clone() *Ledger {
	return &Ledger{lines: l.Lines()}
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Lines())
}

// UnmarshalJSON restores a ledger, merging duplicate products and dropping
// non-positive quantities so a stored snapshot cannot break the invariants.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	l.lines = nil
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if i := l.index(line.ProductID); i >= 0 {
			l.lines[i].Quantity += line.Quantity
			continue
		}
		l.lines = append(l.lines, line)
	}
	return nil
}

func (l *Ledger) index(productID string) int {
	for i := range l.lines {
		if l.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
