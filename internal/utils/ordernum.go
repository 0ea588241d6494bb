package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// NewOrderNumber generates a human-readable order number of the form
// ORD-<unix ms>-<0..9999>. The timestamp component makes collisions
// effectively impossible; the orders table still enforces uniqueness.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), rand.Intn(10000))
}
