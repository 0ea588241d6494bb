// Package service holds the order composer and reversal, the one part
// of the application with multi-step consistency requirements. It runs
// entirely against the repository unit of work so every code path is
// all-or-nothing.
package service

import "fmt"

// NotFoundError reports that a referenced entity does not exist.
// Handlers translate it into HTTP 404.
type NotFoundError struct {
	Entity string // "client", "product", "order"
	ID     uint64
}

func (e *NotFoundError) Error() string {
	if e.Entity == "product" {
		return fmt.Sprintf("Product with ID %d not found", e.ID)
	}
	return fmt.Sprintf("%s not found", title(e.Entity))
}

// ValidationError reports a business-rule violation: inactive product,
// insufficient stock, payment mismatch or a missing required field.
// Handlers translate it into HTTP 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// invalidf builds a ValidationError with a formatted message.
func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func title(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 32
	}
	return string(b)
}
