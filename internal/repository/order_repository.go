package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// OrderRepo serves the read and update paths of the orders API.
// Creation and deletion never go through this type: they are owned by
// the order service on top of the unit of work, because both mutate
// product stock and must commit atomically with the order rows.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// OrderItemDetail is an order line plus a snapshot of the current
// product record. Product is nil when the product has been deleted
// since the order was placed.
type OrderItemDetail struct {
	ProductID uint64      `json:"product_id"`
	Quantity  int64       `json:"quantity"`
	Price     float64     `json:"price"`
	Total     float64     `json:"total"`
	Product   *ProductRef `json:"product"`
}

// OrderDetail is an order joined with its client, creator, items and
// payment entries, the shape returned by the orders endpoints.
type OrderDetail struct {
	ID          uint64            `json:"id"`
	OrderNumber string            `json:"order_number"`
	Client      ClientRef         `json:"client"`
	Creator     UserRef           `json:"creator"`
	Items       []OrderItemDetail `json:"items"`
	TotalAmount float64           `json:"total_amount"`
	Payments    []PaymentEntry    `json:"payment_methods"`
	Status      string            `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// PaymentEntry mirrors one order_payments row.
type PaymentEntry struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

const orderSelect = `SELECT o.id, o.order_number, o.total_amount, o.status, o.notes, o.created_at, o.updated_at,
       c.id, c.name, c.email, c.phone,
       u.id, u.name, u.email
FROM orders o
JOIN clients c ON c.id = o.client_id
JOIN users u ON u.id = o.created_by`

func scanOrderDetail(row interface{ Scan(...any) error }) (OrderDetail, error) {
	var (
		d     OrderDetail
		notes sql.NullString
	)
	err := row.Scan(&d.ID, &d.OrderNumber, &d.TotalAmount, &d.Status, &notes, &d.CreatedAt, &d.UpdatedAt,
		&d.Client.ID, &d.Client.Name, &d.Client.Email, &d.Client.Phone,
		&d.Creator.ID, &d.Creator.Name, &d.Creator.Email)
	if err != nil {
		return d, err
	}
	d.Notes = notes.String
	d.Items = []OrderItemDetail{}
	d.Payments = []PaymentEntry{}
	return d, nil
}

// GetByID returns a single order with items (including current product
// snapshots) and payment entries, or ErrOrderNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*OrderDetail, error) {
	d, err := scanOrderDetail(r.DB.QueryRowContext(ctx, orderSelect+" WHERE o.id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	details := []OrderDetail{d}
	if err := r.loadItems(ctx, details, map[uint64]int{d.ID: 0}); err != nil {
		return nil, err
	}
	if err := r.loadPayments(ctx, details, map[uint64]int{d.ID: 0}); err != nil {
		return nil, err
	}
	return &details[0], nil
}

// List returns all orders with their items and payments, newest first.
func (r *OrderRepo) List(ctx context.Context) ([]OrderDetail, error) {
	rows, err := r.DB.QueryContext(ctx, orderSelect+" ORDER BY o.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]OrderDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		d, err := scanOrderDetail(rows)
		if err != nil {
			return nil, err
		}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	if err := r.loadItems(ctx, details, index); err != nil {
		return nil, err
	}
	if err := r.loadPayments(ctx, details, index); err != nil {
		return nil, err
	}
	return details, nil
}

// loadItems populates Items for every order in details with a single
// IN query, joining the current product record for the snapshot.
func (r *OrderRepo) loadItems(ctx context.Context, details []OrderDetail, index map[uint64]int) error {
	ids, placeholders := idArgs(details)
	q := `SELECT i.order_id, i.product_id, i.quantity, i.price, i.total,
       p.id, p.name, p.sku, p.price
FROM order_items i
LEFT JOIN products p ON p.id = i.product_id
WHERE i.order_id IN (` + placeholders + `)
ORDER BY i.order_id, i.id`
	rows, err := r.DB.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID  uint64
			it       OrderItemDetail
			prodID   sql.NullInt64
			prodName sql.NullString
			prodSKU  sql.NullString
			prodPx   sql.NullFloat64
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity, &it.Price, &it.Total,
			&prodID, &prodName, &prodSKU, &prodPx); err != nil {
			return err
		}
		if prodID.Valid {
			it.Product = &ProductRef{
				ID:    uint64(prodID.Int64),
				Name:  prodName.String,
				SKU:   prodSKU.String,
				Price: prodPx.Float64,
			}
		}
		if idx, ok := index[orderID]; ok {
			details[idx].Items = append(details[idx].Items, it)
		}
	}
	return rows.Err()
}

// loadPayments populates Payments for every order in details.
func (r *OrderRepo) loadPayments(ctx context.Context, details []OrderDetail, index map[uint64]int) error {
	ids, placeholders := idArgs(details)
	q := "SELECT order_id, method, amount FROM order_payments WHERE order_id IN (" + placeholders + ") ORDER BY order_id, id"
	rows, err := r.DB.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID uint64
			p       PaymentEntry
		)
		if err := rows.Scan(&orderID, &p.Method, &p.Amount); err != nil {
			return err
		}
		if idx, ok := index[orderID]; ok {
			details[idx].Payments = append(details[idx].Payments, p)
		}
	}
	return rows.Err()
}

func idArgs(details []OrderDetail) ([]any, string) {
	ids := make([]any, 0, len(details))
	marks := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		marks = append(marks, "?")
	}
	return ids, strings.Join(marks, ",")
}

// OrderUpdate carries the mutable fields of an order. Nil pointers
// mean "leave unchanged"; a non-nil Payments slice replaces all
// payment entries.
type OrderUpdate struct {
	Status   *string
	Notes    *string
	Payments []PaymentEntry
}

// Update applies upd inside one transaction. The payment replacement
// and the column updates commit together so a failed replacement never
// leaves an order with half its payment rows.
func (r *OrderRepo) Update(ctx context.Context, id uint64, upd OrderUpdate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var exists uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM orders WHERE id=? FOR UPDATE", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	if upd.Status != nil {
		if _, err := tx.ExecContext(ctx, "UPDATE orders SET status=?, updated_at=NOW() WHERE id=?", *upd.Status, id); err != nil {
			return err
		}
	}
	if upd.Notes != nil {
		if _, err := tx.ExecContext(ctx, "UPDATE orders SET notes=?, updated_at=NOW() WHERE id=?", *upd.Notes, id); err != nil {
			return err
		}
	}
	if upd.Payments != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM order_payments WHERE order_id=?", id); err != nil {
			return err
		}
		q := "INSERT INTO order_payments (order_id, method, amount) VALUES "
		args := make([]any, 0, len(upd.Payments)*3)
		for i, p := range upd.Payments {
			if i > 0 {
				q += ","
			}
			q += "(?,?,?)"
			args = append(args, id, p.Method, p.Amount)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
