package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dkarimli/backoffice/internal/model"
)

// ProductRepo provides CRUD operations on the `products` table.
// Direct stock writes only happen here through Update; the order
// composer and reversal mutate stock through the unit of work so the
// change commits together with the order rows.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productCols = "id, name, description, price, category, stock, sku, is_active, created_by, created_at, updated_at"

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var (
		p   model.Product
		sku sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock,
		&sku, &p.IsActive, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.SKU = sku.String
	return p, nil
}

// nullable turns an empty string into SQL NULL so the unique index on
// sku ignores products without one.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts a product and populates its ID.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (name, description, price, category, stock, sku, is_active, created_by) VALUES (?,?,?,?,?,?,?,?)",
		p.Name, p.Description, p.Price, p.Category, p.Stock, nullable(p.SKU), p.IsActive, p.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrSKUExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrProductNotFound
	}
	return p, err
}

// List returns all products, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update persists every mutable field of p.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE products SET name=?, description=?, price=?, category=?, stock=?, sku=?, is_active=?, updated_at=NOW() WHERE id=?",
		p.Name, p.Description, p.Price, p.Category, p.Stock, nullable(p.SKU), p.IsActive, p.ID)
	if isDuplicate(err) {
		return ErrSKUExists
	}
	return err
}

// Delete removes a product by id.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ProductRef is the product snapshot attached to order items in
// responses: the current product record, which may differ from the
// price captured on the item.
type ProductRef struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	SKU   string  `json:"sku,omitempty"`
	Price float64 `json:"price"`
}
