package model

import "time"

// Order statuses. New orders start as pending.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentTolerance is the maximum accepted difference between the sum
// of payment entries and the order total. Amounts come from DECIMAL(10,2)
// columns so anything under a cent is rounding noise.
const PaymentTolerance = 0.01

// Order represents a row in the `orders` table plus its item and
// payment rows. Items capture the product's price at order time; the
// live product price is never consulted after the order commits.
type Order struct {
	ID          uint64          `json:"id"`
	OrderNumber string          `json:"order_number"`
	ClientID    uint64          `json:"client_id"`
	Items       []OrderItem     `json:"items"`
	TotalAmount float64         `json:"total_amount"`
	Payments    []PaymentMethod `json:"payment_methods"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   uint64          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderItem is one product/quantity line on an order. Price is the
// unit price captured at order time and Total = Price * Quantity.
type OrderItem struct {
	ProductID uint64  `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
}

// PaymentMethod is a (method tag, amount) pair. An order may split its
// total across several entries; their amounts must sum to the order
// total within PaymentTolerance.
type PaymentMethod struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}
