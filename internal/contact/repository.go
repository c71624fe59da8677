// Package contact stores messages sent through the contact form.
package contact

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/joao-fontenele/hotwheels-storefront/internal/docstore"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
)

var (
	ErrNotFound = errors.New("message not found")
	ErrInvalid  = errors.New("invalid contact message")
)

type messageRecord struct {
	ID        string    `bson:"_id,omitempty"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Message   string    `bson:"message"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r messageRecord) toMessage() domain.ContactMessage {
	return domain.ContactMessage{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
	}
}

type Submission struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

var validate = validator.New()

// FieldError wraps ErrInvalid with the offending field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return ErrInvalid.Error() + ": " + e.Field
}

func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

func (s Submission) normalized() (Submission, error) {
	s = Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Message: strings.TrimSpace(s.Message),
	}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return s, &FieldError{Field: strings.ToLower(verrs[0].Field())}
		}
		return s, err
	}
	if !domain.ValidEmail(s.Email) {
		return s, &FieldError{Field: "email"}
	}
	return s, nil
}

type Repository struct {
	records docstore.Records
}

func NewRepository(records docstore.Records) *Repository {
	return &Repository{records: records}
}

func (r *Repository) Submit(ctx context.Context, s Submission) (string, error) {
	s, err := s.normalized()
	if err != nil {
		return "", err
	}
	return r.records.CreateRecord(ctx, docstore.ContactMessages, messageRecord{
		Name:    s.Name,
		Email:   s.Email,
		Message: s.Message,
	})
}

// List returns messages newest first.
func (r *Repository) List(ctx context.Context) ([]domain.ContactMessage, error) {
	var records []messageRecord
	if err := r.records.ListRecords(ctx, docstore.ContactMessages, docstore.NewestFirst, &records); err != nil {
		return nil, err
	}
	messages := make([]domain.ContactMessage, 0, len(records))
	for _, rec := range records {
		messages = append(messages, rec.toMessage())
	}
	return messages, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.records.DeleteRecord(ctx, docstore.ContactMessages, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
