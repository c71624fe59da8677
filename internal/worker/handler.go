// Package worker turns order.placed events into confirmation e-mails.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/email"
	"github.com/joao-fontenele/hotwheels-storefront/internal/messaging"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

type ConfirmationHandler struct {
	mailer Mailer
	logger *slog.Logger
}

func NewConfirmationHandler(mailer Mailer, logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{
		mailer: mailer,
		logger: logger,
	}
}

// Handle matches messaging.Handler. Undecodable payloads and messages the
// relay rejects are permanent; everything else is retried by the consumer.
func (h *ConfirmationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return messaging.Permanent(fmt.Errorf("unmarshal order placed event: %w", err))
	}

	if !domain.ValidEmail(strings.TrimSpace(event.Email)) {
		return messaging.Permanent(fmt.Errorf("order %s has invalid email %q", event.OrderNumber, event.Email))
	}

	h.logger.Info("processing order placed event", "order_id", event.OrderID, "order_number", event.OrderNumber)

	if err := h.mailer.Send(ctx, confirmationMessage(event)); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)

		var statusErr *email.StatusError
		if errors.As(err, &statusErr) && statusErr.Rejected() {
			return messaging.Permanent(fmt.Errorf("send confirmation email: %w", err))
		}
		return fmt.Errorf("send confirmation email: %w", err)
	}

	h.logger.Info("confirmation email sent", "order_id", event.OrderID)
	return nil
}

func confirmationMessage(event domain.OrderPlacedEvent) email.Message {
	name := strings.TrimSpace(event.Name)
	if name == "" {
		name = "racer"
	}

	items := "items"
	if event.ItemCount == 1 {
		items = "item"
	}

	return email.Message{
		To:      event.Email,
		Subject: "Order Confirmation: " + event.OrderNumber,
		Body: fmt.Sprintf("Hi %s, thanks for your order %s. %d %s, total %s.",
			name, event.OrderNumber, event.ItemCount, items, money.Format(event.TotalAmount, event.Currency)),
	}
}
