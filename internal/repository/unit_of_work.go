package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dkarimli/backoffice/internal/model"
)

// Tx is the transaction-scoped data surface the order service runs
// against. Every method sees the same database transaction, so stock
// reads, stock writes and order rows commit or roll back as one unit.
// Tests implement this interface in memory.
type Tx interface {
	// ClientByID returns a client or ErrClientNotFound.
	ClientByID(ctx context.Context, id uint64) (model.Client, error)
	// ProductForUpdate returns a product or ErrProductNotFound. The
	// row is locked for the rest of the transaction so concurrent
	// order creations against the same product serialize instead of
	// losing updates.
	ProductForUpdate(ctx context.Context, id uint64) (model.Product, error)
	// SetProductStock writes an absolute stock quantity.
	SetProductStock(ctx context.Context, id uint64, stock int64) error
	// InsertOrder persists an order with its items and payment rows
	// and populates o.ID. Returns ErrOrderNumberExists on a duplicate
	// order number.
	InsertOrder(ctx context.Context, o *model.Order) error
	// OrderByID returns an order with items and payments loaded, or
	// ErrOrderNotFound.
	OrderByID(ctx context.Context, id uint64) (model.Order, error)
	// DeleteOrder removes an order and its dependent rows.
	DeleteOrder(ctx context.Context, id uint64) error
}

// UnitOfWork runs a closure of operations with all-or-nothing commit
// semantics. The transaction is rolled back on every exit path unless
// the closure returns nil.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}

// SQLUnitOfWork implements UnitOfWork over a MySQL connection pool.
type SQLUnitOfWork struct{ DB *sql.DB }

func NewUnitOfWork(db *sql.DB) *SQLUnitOfWork { return &SQLUnitOfWork{DB: db} }

// Do begins a transaction, runs fn against it and commits only when fn
// returns nil. Any error, panic included via the deferred rollback,
// leaves the database untouched.
func (u *SQLUnitOfWork) Do(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// sqlTx adapts a *sql.Tx to the Tx interface.
type sqlTx struct{ tx *sql.Tx }

func (t *sqlTx) ClientByID(ctx context.Context, id uint64) (model.Client, error) {
	c, err := scanClient(t.tx.QueryRowContext(ctx,
		"SELECT "+clientCols+" FROM clients WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrClientNotFound
	}
	return c, err
}

func (t *sqlTx) ProductForUpdate(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(t.tx.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrProductNotFound
	}
	return p, err
}

func (t *sqlTx) SetProductStock(ctx context.Context, id uint64, stock int64) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE products SET stock=?, updated_at=NOW() WHERE id=?", stock, id)
	return err
}

func (t *sqlTx) InsertOrder(ctx context.Context, o *model.Order) error {
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO orders (order_number, client_id, total_amount, status, notes, created_by) VALUES (?,?,?,?,?,?)",
		o.OrderNumber, o.ClientID, o.TotalAmount, o.Status, o.Notes, o.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrOrderNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	if len(o.Items) > 0 {
		q := "INSERT INTO order_items (order_id, product_id, quantity, price, total) VALUES "
		args := make([]any, 0, len(o.Items)*5)
		for i, it := range o.Items {
			if i > 0 {
				q += ","
			}
			q += "(?,?,?,?,?)"
			args = append(args, o.ID, it.ProductID, it.Quantity, it.Price, it.Total)
		}
		if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}

	if len(o.Payments) > 0 {
		q := "INSERT INTO order_payments (order_id, method, amount) VALUES "
		args := make([]any, 0, len(o.Payments)*3)
		for i, p := range o.Payments {
			if i > 0 {
				q += ","
			}
			q += "(?,?,?)"
			args = append(args, o.ID, p.Method, p.Amount)
		}
		if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqlTx) OrderByID(ctx context.Context, id uint64) (model.Order, error) {
	var (
		o     model.Order
		notes sql.NullString
	)
	err := t.tx.QueryRowContext(ctx,
		"SELECT id, order_number, client_id, total_amount, status, notes, created_by, created_at, updated_at FROM orders WHERE id=? LIMIT 1",
		id).Scan(&o.ID, &o.OrderNumber, &o.ClientID, &o.TotalAmount, &o.Status, &notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrOrderNotFound
	}
	if err != nil {
		return o, err
	}
	o.Notes = notes.String

	rows, err := t.tx.QueryContext(ctx,
		"SELECT product_id, quantity, price, total FROM order_items WHERE order_id=? ORDER BY id", o.ID)
	if err != nil {
		return o, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Price, &it.Total); err != nil {
			return o, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return o, err
	}

	prows, err := t.tx.QueryContext(ctx,
		"SELECT method, amount FROM order_payments WHERE order_id=? ORDER BY id", o.ID)
	if err != nil {
		return o, err
	}
	defer prows.Close()
	for prows.Next() {
		var p model.PaymentMethod
		if err := prows.Scan(&p.Method, &p.Amount); err != nil {
			return o, err
		}
		o.Payments = append(o.Payments, p)
	}
	return o, prows.Err()
}


func (t *sqlTx) DeleteOrder(ctx context.Context, id uint64) error {
	// dependent rows first; the schema may or may not cascade
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id=?", id); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM order_payments WHERE order_id=?", id); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, "DELETE FROM orders WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
