//go:build integration

package test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/hotwheels-storefront/internal/auth"
	"github.com/joao-fontenele/hotwheels-storefront/internal/cart"
	"github.com/joao-fontenele/hotwheels-storefront/internal/checkout"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/email"
	"github.com/joao-fontenele/hotwheels-storefront/internal/messaging"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
	"github.com/joao-fontenele/hotwheels-storefront/internal/orders"
	"github.com/joao-fontenele/hotwheels-storefront/internal/telemetry"
	"github.com/joao-fontenele/hotwheels-storefront/internal/worker"
)

func TestUserAccounts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := telemetry.OpenPostgres(ctx, pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	tokens, err := auth.NewTokens("integration-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create tokens: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := auth.NewUserRepository(db)
	provider := auth.NewProvider(users, tokens, auth.NewMemoryRevocations(), "admin@example.com", logger)

	signIn, err := provider.Signup(ctx, "Admin@Example.com", "secret1")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if signIn.Identity.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", signIn.Identity.Role)
	}

	stored, err := users.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if stored == nil || stored.ID != signIn.Identity.UserID {
		t.Fatalf("expected stored user %s, got %+v", signIn.Identity.UserID, stored)
	}

	if _, err := provider.Signup(ctx, "admin@example.com", "secret1"); !auth.IsKind(err, auth.KindEmailInUse) {
		t.Fatalf("expected email-already-in-use, got %v", err)
	}

	if _, err := provider.Login(ctx, "admin@example.com", "wrong-pass"); !auth.IsKind(err, auth.KindWrongPassword) {
		t.Fatalf("expected wrong-password, got %v", err)
	}

	missing, err := users.GetByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for unknown email, got %+v, %v", missing, err)
	}
}

type relayCapture struct {
	mu       sync.Mutex
	messages []email.Message
	received chan struct{}
}

func (c *relayCapture) handler(w http.ResponseWriter, r *http.Request) {
	var msg email.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"status":"sent"}`)
	c.received <- struct{}{}
}

func TestCheckoutToConfirmationEmail(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	records, cleanupMongo := SetupMongo(ctx, t)
	defer cleanupMongo()

	brokers, cleanupKafka := SetupKafka(ctx, t)
	defer cleanupKafka()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	topic := "order.placed.test"

	producer := messaging.NewOrderPublisher(brokers, topic)
	defer func() { _ = producer.Close() }()

	orderRepo := orders.NewOrderRepository(records)
	sessions := cart.NewSessions(cart.NewMemorySessionStore(time.Hour))
	service := checkout.NewService(sessions, checkout.NewCalculator(), orderRepo, producer, nil, logger)

	_, err := sessions.Update(ctx, "session-1", func(s *cart.Session) error {
		for range 2 {
			s.Cart.AddItem(domain.Product{ID: "twin-mill", Name: "Twin Mill", Price: decimal.RequireFromString("12.50")})
		}
		s.Currency = money.LKR
		return nil
	})
	if err != nil {
		t.Fatalf("failed to fill cart: %v", err)
	}

	order, err := service.PlaceOrder(ctx, "session-1", "", domain.CustomerInfo{
		Email:   "racer@example.com",
		Name:    "Lightning",
		Address: "1 Track Rd",
		Phone:   "0771234567",
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	stored, err := orderRepo.GetByID(ctx, order.ID)
	if err != nil || stored == nil {
		t.Fatalf("expected stored order, got %+v, %v", stored, err)
	}
	if !stored.TotalAmount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected total 25, got %s", stored.TotalAmount)
	}

	relay := &relayCapture{received: make(chan struct{}, 1)}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", relay.handler)
	relayServer := httptest.NewServer(mux)
	defer relayServer.Close()

	confirmations := worker.NewConfirmationHandler(email.NewClient(relayServer.URL, relayServer.Client()), logger)
	consumer := messaging.NewConsumer(brokers, topic, "order-confirmation-test", messaging.WithLogger(logger))
	defer func() { _ = consumer.Close() }()

	consumeCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	go func() { _ = consumer.Consume(consumeCtx, confirmations.Handle) }()

	select {
	case <-relay.received:
	case <-ctx.Done():
		t.Fatal("timed out waiting for confirmation email")
	}

	relay.mu.Lock()
	defer relay.mu.Unlock()
	msg := relay.messages[0]
	if msg.To != "racer@example.com" {
		t.Fatalf("unexpected recipient %s", msg.To)
	}
	if !strings.Contains(msg.Subject, order.OrderNumber) {
		t.Fatalf("expected subject to contain %s, got %s", order.OrderNumber, msg.Subject)
	}
	if !strings.Contains(msg.Body, "Rs 8,000") {
		t.Fatalf("expected LKR total in body, got %s", msg.Body)
	}
}
