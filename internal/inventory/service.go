package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type NewProduct struct {
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category" validate:"required"`
	Quantity     int     `json:"quantity" validate:"min=0"`
	ReorderLevel int     `json:"reorderLevel" validate:"min=0"`
	Price        float64 `json:"price" validate:"gt=0"`
}

type NewOrder struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	BuyerID   string `json:"buyerId,omitempty" validate:"-"`
	Status    Status `json:"status,omitempty" validate:"-"`
}

// Service owns the catalog and order-placement invariants. It carries no
// cross-call state; everything lives in the store.
type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New(), now: time.Now}
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := s.validate.Struct(in); err != nil {
		return Product{}, productValidationError(err)
	}

	now := s.now()
	p := Product{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Category:     in.Category,
		Quantity:     in.Quantity,
		ReorderLevel: in.ReorderLevel,
		Price:        in.Price,
		LastUpdated:  now.Format(DateLayout),
		CreatedAt:    now,
	}
	if err := s.store.InsertProduct(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// DeleteProduct removes the product only; historical orders keep their
// denormalized product name.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, buyerID string) ([]Order, error) {
	return s.store.ListOrders(ctx, buyerID)
}

// PlaceOrder validates the request and hands the store one atomic unit:
// conditional stock decrement plus order insert. The price snapshot is taken
// at decrement time inside the store, not at request time.
func (s *Service) PlaceOrder(ctx context.Context, in NewOrder) (Order, error) {
	if err := s.validate.Struct(in); err != nil {
		return Order{}, orderValidationError(err)
	}
	status := in.Status
	if status == "" {
		status = StatusConfirmed
	}
	if !status.IsValid() {
		return Order{}, Invalid("Invalid order status")
	}

	now := s.now()
	ord := Order{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		OrderDate: now.Format(DateLayout),
		Status:    status,
		BuyerID:   in.BuyerID,
		CreatedAt: now,
	}
	return s.store.PlaceOrder(ctx, ord)
}

// productValidationError maps the first failed field to the message the
// clients expect.
func productValidationError(err error) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return Invalid("Invalid product")
	}
	switch vErrs[0].Field() {
	case "Name", "Category":
		return Invalid("Name and category are required")
	case "Quantity":
		return Invalid("Quantity must be 0 or greater")
	case "ReorderLevel":
		return Invalid("Reorder level must be 0 or greater")
	case "Price":
		return Invalid("Price must be greater than 0")
	}
	return Invalid("Invalid product")
}

func orderValidationError(err error) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return Invalid("Invalid order")
	}
	v := vErrs[0]
	// A zero quantity trips the required tag, same answer as a missing field.
	if v.Field() == "Quantity" && v.Tag() == "gt" {
		return Invalid("Quantity must be greater than 0")
	}
	return Invalid("Product and quantity are required")
}
