package inventory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store/UserStore used by unit tests and local
// runs without Postgres. The mutex gives PlaceOrder the same per-product
// atomicity the SQL implementation gets from its transaction.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
	orders   []Order
	users    map[string]User // keyed by lowercased email
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]Product),
		users:    make(map[string]User),
	}
}

func (m *MemoryStore) ListProducts(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, id string) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (m *MemoryStore) InsertProduct(ctx context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.products[p.ID] = p
	return nil
}

func (m *MemoryStore) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MemoryStore) ListOrders(ctx context.Context, buyerID string) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Order
	for _, o := range m.orders {
		if buyerID == "" || o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) OrdersSince(ctx context.Context, since time.Time) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Order
	for _, o := range m.orders {
		if !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryStore) PlaceOrder(ctx context.Context, ord Order) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[ord.ProductID]
	if !ok {
		return Order{}, ErrProductNotFound
	}
	if p.Quantity < ord.Quantity {
		return Order{}, &InsufficientStockError{
			ProductID: p.ID, Requested: ord.Quantity, Available: p.Quantity,
		}
	}

	p.Quantity -= ord.Quantity
	p.LastUpdated = ord.OrderDate
	m.products[p.ID] = p

	ord.ProductName = p.Name
	ord.TotalPrice = float64(ord.Quantity) * p.Price
	m.orders = append(m.orders, ord)
	return ord, nil
}

func (m *MemoryStore) InsertUser(ctx context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Email]; ok {
		return ErrEmailTaken
	}
	m.users[u.Email] = u
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return User{}, &NotFoundError{Entity: "user"}
	}
	return u, nil
}

func (m *MemoryStore) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}
