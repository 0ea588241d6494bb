package model

import "time"

// Roles assignable to a user. Admins bypass the permission map
// entirely; regular users are subject to it.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a row in the `users` table. The password is never
// stored in plain text; PasswordHash holds the bcrypt digest and is
// excluded from JSON output.
type User struct {
	ID           uint64      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         string      `json:"role"`
	Permissions  Permissions `json:"permissions"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
