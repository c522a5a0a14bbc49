package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
)

// Store implements inventory.Store and inventory.UserStore on pgx.
type Store struct{ DB *pgxpool.Pool }

func NewStore(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, category, quantity, reorder_level, price, last_updated, created_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []inventory.Product
	for rows.Next() {
		var p inventory.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.ReorderLevel,
			&p.Price, &p.LastUpdated, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (inventory.Product, error) {
	var p inventory.Product
	err := s.DB.QueryRow(ctx, `
		SELECT id, name, category, quantity, reorder_level, price, last_updated, created_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.ReorderLevel,
			&p.Price, &p.LastUpdated, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return inventory.Product{}, inventory.ErrProductNotFound
	}
	return p, err
}

func (s *Store) InsertProduct(ctx context.Context, p inventory.Product) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO products(id, name, category, quantity, reorder_level, price, last_updated, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Name, p.Category, p.Quantity, p.ReorderLevel, p.Price, p.LastUpdated, p.CreatedAt)
	return err
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return inventory.ErrProductNotFound
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context, buyerID string) ([]inventory.Order, error) {
	q := `SELECT id, product_id, product_name, quantity, order_date, status, total_price,
	             COALESCE(buyer_id::text, ''), created_at
	      FROM orders`
	args := []any{}
	if buyerID != "" {
		q += ` WHERE buyer_id=$1`
		args = append(args, buyerID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *Store) OrdersSince(ctx context.Context, since time.Time) ([]inventory.Order, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, product_id, product_name, quantity, order_date, status, total_price,
		       COALESCE(buyer_id::text, ''), created_at
		FROM orders WHERE created_at >= $1 ORDER BY created_at`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]inventory.Order, error) {
	var out []inventory.Order
	for rows.Next() {
		var o inventory.Order
		if err := rows.Scan(&o.ID, &o.ProductID, &o.ProductName, &o.Quantity, &o.OrderDate,
			&o.Status, &o.TotalPrice, &o.BuyerID, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// PlaceOrder runs the whole placement as one transaction: lock the product
// row, check stock, decrement, bump last_updated, insert the order with the
// name/price snapshot read under the lock. A shortfall rolls everything back,
// so stock is never decremented without a matching order.
func (s *Store) PlaceOrder(ctx context.Context, ord inventory.Order) (inventory.Order, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return inventory.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		name  string
		stock int
		price float64
	)
	err = tx.QueryRow(ctx, `SELECT name, quantity, price FROM products WHERE id=$1 FOR UPDATE`,
		ord.ProductID).Scan(&name, &stock, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return inventory.Order{}, inventory.ErrProductNotFound
	}
	if err != nil {
		return inventory.Order{}, err
	}
	if stock < ord.Quantity {
		return inventory.Order{}, &inventory.InsufficientStockError{
			ProductID: ord.ProductID, Requested: ord.Quantity, Available: stock,
		}
	}

	ct, err := tx.Exec(ctx, `
		UPDATE products SET quantity = quantity - $2, last_updated = $3
		WHERE id=$1 AND quantity >= $2`,
		ord.ProductID, ord.Quantity, ord.OrderDate)
	if err != nil {
		return inventory.Order{}, err
	}
	if ct.RowsAffected() != 1 {
		return inventory.Order{}, &inventory.InsufficientStockError{
			ProductID: ord.ProductID, Requested: ord.Quantity, Available: stock,
		}
	}

	ord.ProductName = name
	ord.TotalPrice = float64(ord.Quantity) * price

	var buyer any
	if ord.BuyerID != "" {
		buyer = ord.BuyerID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, product_id, product_name, quantity, order_date, status, total_price, buyer_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		ord.ID, ord.ProductID, ord.ProductName, ord.Quantity, ord.OrderDate, ord.Status,
		ord.TotalPrice, buyer, ord.CreatedAt)
	if err != nil {
		return inventory.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return inventory.Order{}, err
	}
	return ord, nil
}

func (s *Store) InsertUser(ctx context.Context, u inventory.User) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO users(id, name, email, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return inventory.ErrEmailTaken
	}
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (inventory.User, error) {
	var u inventory.User
	err := s.DB.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return inventory.User{}, inventory.ErrUserNotFound
	}
	return u, err
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
