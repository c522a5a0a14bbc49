package inventory

import "time"

// DateLayout is the wire format for lastUpdated / orderDate fields.
const DateLayout = "2006-01-02"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleBuyer Role = "buyer"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"-"`
}

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorderLevel"`
	Price        float64   `json:"price"`
	LastUpdated  string    `json:"lastUpdated"` // YYYY-MM-DD, bumped on every mutation
	CreatedAt    time.Time `json:"-"`
}

type Order struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"` // snapshot taken at order time, survives product deletion
	Quantity    int       `json:"quantity"`
	OrderDate   string    `json:"orderDate"` // YYYY-MM-DD
	Status      Status    `json:"status"`
	TotalPrice  float64   `json:"totalPrice"` // quantity * price at decrement time, immutable
	BuyerID     string    `json:"buyerId,omitempty"`
	CreatedAt   time.Time `json:"-"`
}
