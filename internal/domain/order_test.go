package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		status, err := ParseOrderStatus(s)
		require.NoError(t, err)
		assert.Equal(t, OrderStatus(s), status)
	}

	_, err := ParseOrderStatus("confirmed")
	assert.ErrorIs(t, err, ErrUnknownOrderStatus)
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
}

func TestNewOrderPlacedEvent(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	order := &Order{
		ID:          "abc",
		OrderNumber: "HW-1",
		Customer:    CustomerInfo{Email: "a@b.co", Name: "Ann"},
		Items: []OrderItem{
			{ProductID: "1", Quantity: 2},
			{ProductID: "2", Quantity: 1},
		},
		TotalAmount:    decimal.RequireFromString("30"),
		TotalDisplayed: decimal.RequireFromString("9600"),
		Currency:       money.LKR,
		CreatedAt:      created,
	}

	event := NewOrderPlacedEvent(order)

	assert.Equal(t, "abc", event.OrderID)
	assert.Equal(t, "a@b.co", event.Email)
	assert.Equal(t, 3, event.ItemCount)
	assert.Equal(t, money.LKR, event.Currency)
	assert.Equal(t, created, event.Timestamp)
}
