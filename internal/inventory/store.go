package inventory

import (
	"context"
	"time"
)

// Store is the persistence port for products and orders. Implementations must
// make PlaceOrder atomic per product: the stock check, the decrement and the
// order insert happen as one unit or not at all.
type Store interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	InsertProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error

	// ListOrders returns orders most recent first, optionally filtered by buyer.
	ListOrders(ctx context.Context, buyerID string) ([]Order, error)
	// OrdersSince returns orders created at or after the given instant.
	OrdersSince(ctx context.Context, since time.Time) ([]Order, error)

	// PlaceOrder receives the order with ID, ProductID, Quantity, OrderDate,
	// Status, BuyerID and CreatedAt filled in. It resolves the product, verifies
	// stock, decrements it, bumps lastUpdated to the order date, snapshots
	// ProductName and TotalPrice onto the order and persists it.
	// Fails with ErrProductNotFound or ErrInsufficientStock.
	PlaceOrder(ctx context.Context, ord Order) (Order, error)
}

// UserStore is the persistence port consumed by the auth gate.
type UserStore interface {
	InsertUser(ctx context.Context, u User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CountUsers(ctx context.Context) (int, error)
}
