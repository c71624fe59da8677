package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/joao-fontenele/hotwheels-storefront/internal/docstore"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

var (
	ErrNotFound    = errors.New("order not found")
	ErrStatusFinal = errors.New("order status can no longer change")
)

type customerRecord struct {
	Email   string `bson:"email"`
	Name    string `bson:"name"`
	Address string `bson:"address"`
	Phone   string `bson:"phone"`
}

type itemRecord struct {
	ProductID string `bson:"product_id"`
	Name      string `bson:"name"`
	Image     string `bson:"image"`
	Price     string `bson:"price"`
	Quantity  int    `bson:"quantity"`
	LineTotal string `bson:"line_total"`
}

// orderRecord stores amounts as decimal strings so no precision is lost.
type orderRecord struct {
	ID             string         `bson:"_id,omitempty"`
	OrderNumber    string         `bson:"order_number"`
	UserID         string         `bson:"user_id,omitempty"`
	Customer       customerRecord `bson:"customer"`
	Items          []itemRecord   `bson:"items"`
	TotalAmount    string         `bson:"total_amount"`
	TotalDisplayed string         `bson:"total_displayed"`
	Currency       string         `bson:"currency"`
	Status         string         `bson:"status"`
	CreatedAt      time.Time      `bson:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at"`
}

func newOrderRecord(o *domain.Order) orderRecord {
	items := make([]itemRecord, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, itemRecord{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price.String(),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.String(),
		})
	}
	return orderRecord{
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Customer: customerRecord{
			Email:   o.Customer.Email,
			Name:    o.Customer.Name,
			Address: o.Customer.Address,
			Phone:   o.Customer.Phone,
		},
		Items:          items,
		TotalAmount:    o.TotalAmount.String(),
		TotalDisplayed: o.TotalDisplayed.String(),
		Currency:       string(o.Currency),
		Status:         string(o.Status),
	}
}

func (r orderRecord) toOrder() domain.Order {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     money.ParsePrice(item.Price),
			Quantity:  item.Quantity,
			LineTotal: money.ParsePrice(item.LineTotal),
		})
	}
	return domain.Order{
		ID:          r.ID,
		OrderNumber: r.OrderNumber,
		UserID:      r.UserID,
		Customer: domain.CustomerInfo{
			Email:   r.Customer.Email,
			Name:    r.Customer.Name,
			Address: r.Customer.Address,
			Phone:   r.Customer.Phone,
		},
		Items:          items,
		TotalAmount:    money.ParsePrice(r.TotalAmount),
		TotalDisplayed: money.ParsePrice(r.TotalDisplayed),
		Currency:       money.Currency(r.Currency),
		Status:         domain.OrderStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type OrderRepository struct {
	records docstore.Records
}

func NewOrderRepository(records docstore.Records) *OrderRepository {
	return &OrderRepository{records: records}
}

// Create stores order and fills in its id. Once the store has accepted the
// record the order counts as placed: the timestamps assigned by the store are
// copied back when they can be read, otherwise order keeps its own.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	id, err := r.records.CreateRecord(ctx, docstore.Orders, newOrderRecord(order))
	if err != nil {
		return err
	}
	order.ID = id

	if stored, err := r.GetByID(ctx, id); err == nil && stored != nil {
		order.CreatedAt = stored.CreatedAt
		order.UpdatedAt = stored.UpdatedAt
	}
	return nil
}

// GetByID returns nil, nil when the order does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var rec orderRecord
	if err := r.records.GetRecord(ctx, docstore.Orders, id, &rec); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	order := rec.toOrder()
	return &order, nil
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	var records []orderRecord
	if err := r.records.ListRecords(ctx, docstore.Orders, docstore.NewestFirst, &records); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, rec.toOrder())
	}
	return orders, nil
}

// UpdateStatus moves an order to status. Delivered and cancelled orders are
// final.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return nil, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if current.Status == status {
		return current, nil
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrStatusFinal, current.Status)
	}

	err = r.records.UpdateRecord(ctx, docstore.Orders, id, bson.M{"status": string(status)})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
