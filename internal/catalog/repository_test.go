package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/hotwheels-storefront/internal/docstore"
)

func newTestRepository() (*Repository, *docstore.MemoryStore) {
	store := docstore.NewMemoryStore()
	return NewRepository(store), store
}

func TestProductInput_Validate(t *testing.T) {
	valid := ProductInput{Name: "Drift King", Price: "$10.99", Image: "https://img.example.com/drift.png"}

	t.Run("normalizes price", func(t *testing.T) {
		in := valid
		in.Price = " 1,299.5 "
		out, err := in.Validate()
		require.NoError(t, err)
		assert.Equal(t, "$1299.50", out.Price)
	})

	tests := []struct {
		name  string
		edit  func(*ProductInput)
		field string
	}{
		{"missing name", func(in *ProductInput) { in.Name = "  " }, "name"},
		{"missing price", func(in *ProductInput) { in.Price = "" }, "price"},
		{"missing image", func(in *ProductInput) { in.Image = "" }, "image"},
		{"bad image url", func(in *ProductInput) { in.Image = "not a url" }, "image"},
		{"malformed price", func(in *ProductInput) { in.Price = "$abc" }, "price"},
		{"trailing junk", func(in *ProductInput) { in.Price = "$9.99 each" }, "price"},
		{"negative price", func(in *ProductInput) { in.Price = "-$5" }, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			_, err := in.Validate()
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository()

	created, err := repo.Create(ctx, ProductInput{Name: "Cyber Speeder", Price: "$7.99", Image: "https://img.example.com/cyber.png"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("7.99")))

	updated, err := repo.Update(ctx, created.ID, ProductInput{Name: "Cyber Speeder II", Price: "8.49", Image: "https://img.example.com/cyber2.png"})
	require.NoError(t, err)
	assert.Equal(t, "Cyber Speeder II", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("8.49")))

	_, err = repo.Update(ctx, "missing", ProductInput{Name: "x", Price: "$1", Image: "https://img.example.com/x.png"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_MalformedStoredPriceReadsAsZero(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepository()

	for _, price := range []string{"call us", "-5", "$-12.50"} {
		t.Run(price, func(t *testing.T) {
			id, err := store.CreateRecord(ctx, docstore.Products, productRecord{Name: "Legacy", Price: price, Image: "https://img.example.com/l.png"})
			require.NoError(t, err)

			product, err := repo.Get(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, product)
			assert.True(t, product.Price.IsZero(), "got %s", product.Price)
		})
	}
}

func TestRepository_Seed(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, repo.Seed(ctx, logger))
	require.NoError(t, repo.Seed(ctx, logger))

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(defaultProducts))
	assert.Equal(t, "Hot Wheels Turbo Racer", products[0].Name)
	assert.Equal(t, "Cyber Speeder", products[len(products)-1].Name)
}
