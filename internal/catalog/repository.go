// Package catalog stores the products the storefront sells.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/joao-fontenele/hotwheels-storefront/internal/docstore"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

var ErrNotFound = errors.New("product not found")

// productRecord is the stored shape. Prices keep their "$9.99" form in the
// document store and are parsed into decimals here.
type productRecord struct {
	ID        string    `bson:"_id,omitempty"`
	Name      string    `bson:"name"`
	Price     string    `bson:"price"`
	Image     string    `bson:"image"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r productRecord) toProduct() domain.Product {
	return domain.Product{
		ID:        r.ID,
		Name:      r.Name,
		Price:     money.ParsePrice(r.Price),
		Image:     r.Image,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ProductInput is what an admin submits to create or replace a product.
type ProductInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Price string `json:"price" validate:"required"`
	Image string `json:"image" validate:"required,http_url"`
}

// FieldError names the first invalid input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New()

// Validate trims the input and checks it, including a strict price parse.
// It returns the record fields to store.
func (in ProductInput) Validate() (ProductInput, error) {
	in = ProductInput{
		Name:  strings.TrimSpace(in.Name),
		Price: strings.TrimSpace(in.Price),
		Image: strings.TrimSpace(in.Image),
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			if verrs[0].Tag() == "required" {
				return in, &FieldError{Field: field, Message: field + " is required"}
			}
			return in, &FieldError{Field: field, Message: field + " is invalid"}
		}
		return in, err
	}
	price, err := money.ParsePriceStrict(in.Price)
	if err != nil {
		return in, &FieldError{Field: "price", Message: "price must be a non-negative amount such as $9.99"}
	}
	in.Price = money.FormatPrice(price)
	return in, nil
}

type Repository struct {
	records docstore.Records
}

func NewRepository(records docstore.Records) *Repository {
	return &Repository{records: records}
}

// List returns products in the order they were added.
func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	var records []productRecord
	if err := r.records.ListRecords(ctx, docstore.Products, docstore.Sort{Field: "created_at"}, &records); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.toProduct())
	}
	return products, nil
}

// Get returns nil, nil when the product does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Product, error) {
	var rec productRecord
	if err := r.records.GetRecord(ctx, docstore.Products, id, &rec); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	product := rec.toProduct()
	return &product, nil
}

func (r *Repository) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	input, err := input.Validate()
	if err != nil {
		return nil, err
	}
	id, err := r.records.CreateRecord(ctx, docstore.Products, productRecord{
		Name:  input.Name,
		Price: input.Price,
		Image: input.Image,
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	input, err := input.Validate()
	if err != nil {
		return nil, err
	}
	err = r.records.UpdateRecord(ctx, docstore.Products, id, bson.M{
		"name":  input.Name,
		"price": input.Price,
		"image": input.Image,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.records.DeleteRecord(ctx, docstore.Products, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
