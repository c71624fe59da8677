package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/joao-fontenele/hotwheels-storefront/internal/cart"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/telemetry"
)

// OrderStore persists a new order and assigns its ID.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlacedEvent) error
}

type Service struct {
	sessions  *cart.Sessions
	calc      *Calculator
	store     OrderStore
	publisher EventPublisher
	breaker   *gobreaker.CircuitBreaker[struct{}]
	metrics   *telemetry.Metrics
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService wires checkout. publisher may be nil when messaging is not
// configured.
func NewService(sessions *cart.Sessions, calc *Calculator, store OrderStore, publisher EventPublisher, metrics *telemetry.Metrics, logger *slog.Logger) *Service {
	return &Service{
		sessions:  sessions,
		calc:      calc,
		store:     store,
		publisher: publisher,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:    "order-store",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		metrics:  metrics,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Summary prices the session's cart in its display currency.
func (s *Service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(session.Cart, session.Currency), nil
}

// PlaceOrder builds an order from the session's cart and submits it. The
// cart is cleared only once the order store has accepted the order; on any
// error it keeps its lines. userID is empty for guest checkouts.
func (s *Service) PlaceOrder(ctx context.Context, sessionID, userID string, customer domain.CustomerInfo) (*domain.Order, error) {
	if !s.begin(sessionID) {
		return nil, ErrSubmissionInFlight
	}
	defer s.end(sessionID)

	var order *domain.Order
	_, err := s.sessions.Update(ctx, sessionID, func(session *cart.Session) error {
		built, err := s.calc.BuildOrder(session.Cart, customer, session.Currency)
		if err != nil {
			return err
		}
		built.UserID = userID

		if err := s.submit(ctx, built); err != nil {
			return &SubmissionError{OrderNumber: built.OrderNumber, Err: err}
		}
		order = built
		session.Cart.Clear()
		return nil
	})

	if order == nil {
		var subErr *SubmissionError
		if errors.As(err, &subErr) {
			s.metrics.SubmissionFailed(ctx)
			s.logger.Error("order submission failed", "error", err, "order_number", subErr.OrderNumber)
		}
		return nil, err
	}
	if err != nil {
		s.logger.Error("order placed but cart not cleared", "error", err, "order_id", order.ID)
	}

	s.metrics.OrderPlaced(ctx, string(order.Currency), order.TotalAmount.InexactFloat64())

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, domain.NewOrderPlacedEvent(order)); err != nil {
			s.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
		}
	}

	s.logger.Info("order placed", "order_id", order.ID, "order_number", order.OrderNumber, "total_usd", order.TotalAmount.StringFixed(2))
	return order, nil
}

func (s *Service) submit(ctx context.Context, order *domain.Order) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.store.Create(ctx, order)
	})
	return err
}

func (s *Service) begin(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *Service) end(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}
