package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dkarimli/backoffice/internal/model"
)

// ClientRepo provides CRUD operations on the `clients` table. The
// address blob is a JSON column passed through as a free-form object.
type ClientRepo struct{ DB *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

const clientCols = "id, name, email, phone, address, company, notes, is_active, created_by, created_at, updated_at"

func scanClient(row interface{ Scan(...any) error }) (model.Client, error) {
	var (
		c       model.Client
		address []byte
		company sql.NullString
		notes   sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &address, &company, &notes,
		&c.IsActive, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.Address = map[string]any{}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &c.Address); err != nil {
			return c, err
		}
	}
	c.Company = company.String
	c.Notes = notes.String
	return c, nil
}

// Create inserts a client and populates its ID.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Address == nil {
		c.Address = map[string]any{}
	}
	address, err := json.Marshal(c.Address)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clients (name, email, phone, address, company, notes, is_active, created_by) VALUES (?,?,?,?,?,?,?,?)",
		c.Name, c.Email, c.Phone, address, c.Company, c.Notes, c.IsActive, c.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a client by id.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	c, err := scanClient(r.DB.QueryRowContext(ctx,
		"SELECT "+clientCols+" FROM clients WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrClientNotFound
	}
	return c, err
}

// List returns all clients, newest first.
func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+clientCols+" FROM clients ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	clients := make([]model.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Update persists every mutable field of c.
func (r *ClientRepo) Update(ctx context.Context, c *model.Client) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	address, err := json.Marshal(c.Address)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE clients SET name=?, email=?, phone=?, address=?, company=?, notes=?, is_active=?, updated_at=NOW() WHERE id=?",
		c.Name, c.Email, c.Phone, address, c.Company, c.Notes, c.IsActive, c.ID)
	if isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// Delete removes a client by id.
func (r *ClientRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM clients WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClientNotFound
	}
	return nil
}

// ClientRef is the trimmed client representation embedded in order
// responses.
type ClientRef struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
