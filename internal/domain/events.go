package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

type OrderPlacedEvent struct {
	OrderID        string          `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	ItemCount      int             `json:"item_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalDisplayed decimal.Decimal `json:"total_displayed"`
	Currency       money.Currency  `json:"currency"`
	Timestamp      time.Time       `json:"timestamp"`
}

func NewOrderPlacedEvent(order *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Email:          order.Customer.Email,
		Name:           order.Customer.Name,
		ItemCount:      order.ItemCount(),
		TotalAmount:    order.TotalAmount,
		TotalDisplayed: order.TotalDisplayed,
		Currency:       order.Currency,
		Timestamp:      order.CreatedAt,
	}
}
