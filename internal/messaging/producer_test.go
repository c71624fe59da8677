package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

func placedEvent() domain.OrderPlacedEvent {
	return domain.OrderPlacedEvent{
		OrderID:        "order-1",
		OrderNumber:    "HW-1700000000000",
		Email:          "racer@example.com",
		Name:           "Lightning",
		ItemCount:      2,
		TotalAmount:    decimal.RequireFromString("25"),
		TotalDisplayed: decimal.RequireFromString("8000"),
		Currency:       money.LKR,
		Timestamp:      time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOrderPlacedMessage(t *testing.T) {
	event := placedEvent()

	msg, err := orderPlacedMessage(event)
	require.NoError(t, err)

	assert.Equal(t, "order-1", string(msg.Key))
	assert.Equal(t, event.Timestamp, msg.Time)

	carrier := NewMessageCarrier(&msg)
	assert.Equal(t, "application/json", carrier.Get(contentTypeHeader))
	assert.Equal(t, orderPlacedEventType, carrier.Get(eventTypeHeader))

	var decoded domain.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.OrderNumber, decoded.OrderNumber)
	assert.True(t, decoded.TotalAmount.Equal(event.TotalAmount))
}

func TestOrderPublisher_RejectsEventWithoutOrderID(t *testing.T) {
	p := NewOrderPublisher([]string{"localhost:9092"}, "")
	defer func() { _ = p.Close() }()

	assert.Equal(t, OrderPlacedTopic, p.topic)

	event := placedEvent()
	event.OrderID = ""
	assert.Error(t, p.PublishOrderPlaced(context.Background(), event))
}
