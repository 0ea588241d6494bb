package model

import "time"

// Product represents a row in the `products` table. Stock is mutated
// directly by product updates and indirectly by order creation and
// deletion; it never goes negative.
type Product struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Stock       int64     `json:"stock"`
	SKU         string    `json:"sku,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   uint64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
