package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/email"
	"github.com/joao-fontenele/hotwheels-storefront/internal/messaging"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

type fakeMailer struct {
	sent []email.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func eventPayload(t *testing.T, mutate func(*domain.OrderPlacedEvent)) []byte {
	t.Helper()
	event := domain.OrderPlacedEvent{
		OrderID:        "order-1",
		OrderNumber:    "HW-1700000000000",
		Email:          "racer@example.com",
		Name:           "Lightning",
		ItemCount:      3,
		TotalAmount:    decimal.NewFromInt(30),
		TotalDisplayed: decimal.NewFromInt(9600),
		Currency:       money.LKR,
		Timestamp:      time.Now(),
	}
	if mutate != nil {
		mutate(&event)
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestConfirmationHandler_Handle(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("sends confirmation in the order currency", func(t *testing.T) {
		mailer := &fakeMailer{}
		h := NewConfirmationHandler(mailer, logger)

		require.NoError(t, h.Handle(t.Context(), eventPayload(t, nil)))
		require.Len(t, mailer.sent, 1)

		msg := mailer.sent[0]
		assert.Equal(t, "racer@example.com", msg.To)
		assert.Equal(t, "Order Confirmation: HW-1700000000000", msg.Subject)
		assert.Contains(t, msg.Body, "Rs 9,600")
		assert.Contains(t, msg.Body, "3 items")
	})

	t.Run("malformed payload is permanent", func(t *testing.T) {
		mailer := &fakeMailer{}
		err := NewConfirmationHandler(mailer, logger).Handle(t.Context(), []byte("{"))
		assert.True(t, messaging.IsPermanent(err))
		assert.Empty(t, mailer.sent)
	})

	t.Run("invalid email is permanent", func(t *testing.T) {
		payload := eventPayload(t, func(e *domain.OrderPlacedEvent) { e.Email = "nope" })
		err := NewConfirmationHandler(&fakeMailer{}, logger).Handle(t.Context(), payload)
		assert.True(t, messaging.IsPermanent(err))
	})

	t.Run("relay outage is retryable", func(t *testing.T) {
		mailer := &fakeMailer{err: errors.New("connection refused")}
		err := NewConfirmationHandler(mailer, logger).Handle(t.Context(), eventPayload(t, nil))
		require.Error(t, err)
		assert.False(t, messaging.IsPermanent(err))
	})

	t.Run("relay rejection is permanent", func(t *testing.T) {
		mailer := &fakeMailer{err: &email.StatusError{StatusCode: http.StatusUnprocessableEntity}}
		err := NewConfirmationHandler(mailer, logger).Handle(t.Context(), eventPayload(t, nil))
		assert.True(t, messaging.IsPermanent(err))
	})
}

func TestConfirmationMessage_SingleItemUSD(t *testing.T) {
	msg := confirmationMessage(domain.OrderPlacedEvent{
		OrderNumber: "HW-1",
		Email:       "a@b.com",
		ItemCount:   1,
		TotalAmount: decimal.RequireFromString("9.99"),
		Currency:    money.USD,
	})
	assert.Contains(t, msg.Body, "Hi racer")
	assert.Contains(t, msg.Body, "1 item,")
	assert.Contains(t, msg.Body, "$9.99")
}
