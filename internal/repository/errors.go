// Package repository implements data access over MySQL. This file
// defines sentinel errors shared across repositories so that the
// service and handler layers can distinguish failure cases without
// inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// Not-found sentinels, one per entity. Repositories translate
// sql.ErrNoRows into these so callers never see driver errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// Duplicate-key sentinels for unique columns. Handlers translate
// these into HTTP 409 responses.
var (
	ErrEmailExists       = errors.New("email already exists")
	ErrSKUExists         = errors.New("sku already exists")
	ErrOrderNumberExists = errors.New("order number already exists")
)

// isDuplicate reports whether err is a MySQL duplicate-entry error
// (code 1062). The driver does not expose a typed error for it.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
