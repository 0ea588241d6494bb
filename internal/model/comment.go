package model

import "time"

// Targets a comment can be attached to.
const (
	RelatedClient  = "client"
	RelatedOrder   = "order"
	RelatedProduct = "product"
	RelatedGeneral = "general"
)

// ValidRelatedTo reports whether s is a known comment target tag.
func ValidRelatedTo(s string) bool {
	switch s {
	case RelatedClient, RelatedOrder, RelatedProduct, RelatedGeneral:
		return true
	}
	return false
}

// Comment represents a row in the `comments` table. RelatedID is nil
// for general comments.
type Comment struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	RelatedTo string    `json:"related_to"`
	RelatedID *uint64   `json:"related_id,omitempty"`
	CreatedBy uint64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
