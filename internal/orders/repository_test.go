package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/hotwheels-storefront/internal/docstore"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

func sampleOrder(number string) *domain.Order {
	return &domain.Order{
		OrderNumber: number,
		UserID:      "user-1",
		Customer: domain.CustomerInfo{
			Email:   "racer@example.com",
			Name:    "Ruwan Perera",
			Address: "12 Galle Road, Colombo",
			Phone:   "+94 77 123 4567",
		},
		Items: []domain.OrderItem{{
			ProductID: "p1",
			Name:      "Turbo Racer",
			Image:     "https://img.example.com/turbo.png",
			Price:     decimal.RequireFromString("9.99"),
			Quantity:  2,
			LineTotal: decimal.RequireFromString("19.98"),
		}},
		TotalAmount:    decimal.RequireFromString("19.98"),
		TotalDisplayed: decimal.RequireFromString("6393.6"),
		Currency:       money.LKR,
		Status:         domain.OrderStatusPending,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(docstore.NewMemoryStore())

	order := sampleOrder("HW-1")
	require.NoError(t, repo.Create(ctx, order))
	require.NotEmpty(t, order.ID)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "HW-1", got.OrderNumber)
	assert.Equal(t, order.Customer, got.Customer)
	assert.Equal(t, money.LKR, got.Currency)
	assert.True(t, got.TotalAmount.Equal(order.TotalAmount))
	assert.True(t, got.TotalDisplayed.Equal(order.TotalDisplayed))
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].LineTotal.Equal(decimal.RequireFromString("19.98")))
	assert.Equal(t, order.CreatedAt, got.CreatedAt)

	missing, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(docstore.NewMemoryStore())

	for _, n := range []string{"HW-1", "HW-2", "HW-3"} {
		require.NoError(t, repo.Create(ctx, sampleOrder(n)))
	}

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "HW-3", orders[0].OrderNumber)
	assert.Equal(t, "HW-1", orders[2].OrderNumber)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(docstore.NewMemoryStore())
	order := sampleOrder("HW-1")
	require.NoError(t, repo.Create(ctx, order))

	updated, err := repo.UpdateStatus(ctx, order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)
	assert.Equal(t, "HW-1", updated.OrderNumber)

	updated, err = repo.UpdateStatus(ctx, order.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, updated.Status)

	_, err = repo.UpdateStatus(ctx, order.ID, domain.OrderStatusPending)
	assert.ErrorIs(t, err, ErrStatusFinal)

	same, err := repo.UpdateStatus(ctx, order.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, same.Status)

	_, err = repo.UpdateStatus(ctx, order.ID, domain.OrderStatus("confirmed"))
	assert.ErrorIs(t, err, domain.ErrUnknownOrderStatus)

	_, err = repo.UpdateStatus(ctx, "missing", domain.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}
