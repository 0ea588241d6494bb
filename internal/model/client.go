package model

import "time"

// Client represents a row in the `clients` table. Address is an
// arbitrary JSON object supplied by the frontend (street, city, ...)
// and is stored verbatim in a JSON column.
type Client struct {
	ID        uint64         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   map[string]any `json:"address"`
	Company   string         `json:"company,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	IsActive  bool           `json:"is_active"`
	CreatedBy uint64         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
