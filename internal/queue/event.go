// Package queue defines message payloads exchanged over the message
// broker plus the publisher and background consumer for them.
package queue

// OrderCreatedEvent is published after an order commits. It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type OrderCreatedEvent struct {
	OrderID     uint64  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	ClientID    uint64  `json:"client_id"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
	CreatedBy   uint64  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
}
