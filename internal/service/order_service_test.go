package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarimli/backoffice/internal/model"
	"github.com/dkarimli/backoffice/internal/repository"
)

// memStore is an in-memory unit of work. Do runs the closure against a
// snapshot and only applies the result on success, mirroring the
// rollback semantics of the SQL implementation.
type memStore struct {
	clients  map[uint64]model.Client
	products map[uint64]model.Product
	orders   map[uint64]model.Order
	nextID   uint64
}

func newMemStore() *memStore {
	return &memStore{
		clients:  map[uint64]model.Client{},
		products: map[uint64]model.Product{},
		orders:   map[uint64]model.Order{},
		nextID:   1,
	}
}

func (m *memStore) Do(_ context.Context, fn func(tx repository.Tx) error) error {
	snap := &memStore{
		clients:  map[uint64]model.Client{},
		products: map[uint64]model.Product{},
		orders:   map[uint64]model.Order{},
		nextID:   m.nextID,
	}
	for k, v := range m.clients {
		snap.clients[k] = v
	}
	for k, v := range m.products {
		snap.products[k] = v
	}
	for k, v := range m.orders {
		snap.orders[k] = v
	}
	if err := fn(&memTx{store: snap}); err != nil {
		return err
	}
	*m = *snap
	return nil
}

type memTx struct{ store *memStore }

func (t *memTx) ClientByID(_ context.Context, id uint64) (model.Client, error) {
	c, ok := t.store.clients[id]
	if !ok {
		return model.Client{}, repository.ErrClientNotFound
	}
	return c, nil
}

func (t *memTx) ProductForUpdate(_ context.Context, id uint64) (model.Product, error) {
	p, ok := t.store.products[id]
	if !ok {
		return model.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (t *memTx) SetProductStock(_ context.Context, id uint64, stock int64) error {
	p, ok := t.store.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Stock = stock
	t.store.products[id] = p
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, o *model.Order) error {
	for _, existing := range t.store.orders {
		if existing.OrderNumber == o.OrderNumber {
			return repository.ErrOrderNumberExists
		}
	}
	o.ID = t.store.nextID
	t.store.nextID++
	t.store.orders[o.ID] = *o
	return nil
}

func (t *memTx) OrderByID(_ context.Context, id uint64) (model.Order, error) {
	o, ok := t.store.orders[id]
	if !ok {
		return model.Order{}, repository.ErrOrderNotFound
	}
	return o, nil
}

func (t *memTx) DeleteOrder(_ context.Context, id uint64) error {
	if _, ok := t.store.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(t.store.orders, id)
	return nil
}

func seedStore() *memStore {
	st := newMemStore()
	st.clients[1] = model.Client{ID: 1, Name: "Acme Corp", Email: "acme@example.com"}
	st.products[10] = model.Product{ID: 10, Name: "Widget", Price: 10.00, Stock: 5, IsActive: true}
	st.products[11] = model.Product{ID: 11, Name: "Gadget", Price: 25.50, Stock: 2, IsActive: true}
	st.products[12] = model.Product{ID: 12, Name: "Legacy Part", Price: 5.00, Stock: 100, IsActive: false}
	return st
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements stock and captures prices", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		o, err := svc.Create(ctx, CreateRequest{
			ClientID:  1,
			Items:     []ItemRequest{{ProductID: 10, Quantity: 3}},
			Payments:  []model.PaymentMethod{{Method: "cash", Amount: 30.00}},
			CreatedBy: 7,
		})
		require.NoError(t, err)
		require.NotNil(t, o)

		assert.Equal(t, int64(2), st.products[10].Stock)
		assert.Equal(t, model.StatusPending, o.Status)
		assert.Equal(t, 30.00, o.TotalAmount)
		require.Len(t, o.Items, 1)
		assert.Equal(t, 10.00, o.Items[0].Price)
		assert.Equal(t, 30.00, o.Items[0].Total)
		assert.True(t, strings.HasPrefix(o.OrderNumber, "ORD-"))
		assert.Contains(t, st.orders, o.ID)
	})

	t.Run("insufficient stock reports available quantity", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		_, err := svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items:    []ItemRequest{{ProductID: 11, Quantity: 3}},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 76.50}},
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Insufficient stock for Gadget. Available: 2", ve.Error())
		assert.Equal(t, int64(2), st.products[11].Stock)
		assert.Empty(t, st.orders)
	})

	t.Run("payment mismatch rolls back stock decrements", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		_, err := svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items:    []ItemRequest{{ProductID: 10, Quantity: 3}},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 29.98}},
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Payment methods total must equal order total", ve.Error())
		// decrement happened before the payment check inside the tx, so
		// the rollback must restore it
		assert.Equal(t, int64(5), st.products[10].Stock)
		assert.Empty(t, st.orders)
	})

	t.Run("payment within tolerance passes", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		_, err := svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items:    []ItemRequest{{ProductID: 10, Quantity: 3}},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 29.995}},
		})
		require.NoError(t, err)
	})

	t.Run("split payments sum across methods", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		o, err := svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items:    []ItemRequest{{ProductID: 10, Quantity: 2}},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 12.00}, {Method: "card", Amount: 8.00}},
		})
		require.NoError(t, err)
		assert.Equal(t, 20.00, o.TotalAmount)
		assert.Len(t, o.Payments, 2)
	})

	t.Run("failure on second item discards first decrement", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		_, err := svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items: []ItemRequest{
				{ProductID: 10, Quantity: 2},
				{ProductID: 11, Quantity: 5}, // only 2 available
			},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 147.50}},
		})
		require.Error(t, err)
		assert.Equal(t, int64(5), st.products[10].Stock)
		assert.Equal(t, int64(2), st.products[11].Stock)
		assert.Empty(t, st.orders)
	})

	t.Run("inactive product is rejected", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		_, err := svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items:    []ItemRequest{{ProductID: 12, Quantity: 1}},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 5.00}},
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Product Legacy Part is not available", ve.Error())
	})

	t.Run("unknown client", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		_, err := svc.Create(ctx, CreateRequest{
			ClientID: 99,
			Items:    []ItemRequest{{ProductID: 10, Quantity: 1}},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 10.00}},
		})
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Client not found", nf.Error())
	})

	t.Run("unknown product", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		_, err := svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items:    []ItemRequest{{ProductID: 99, Quantity: 1}},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 10.00}},
		})
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Product with ID 99 not found", nf.Error())
	})

	t.Run("input validation", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		_, err := svc.Create(ctx, CreateRequest{ClientID: 1, Payments: []model.PaymentMethod{{Method: "cash", Amount: 1}}})
		assert.EqualError(t, err, "At least one item is required")

		_, err = svc.Create(ctx, CreateRequest{ClientID: 1, Items: []ItemRequest{{ProductID: 10, Quantity: 1}}})
		assert.EqualError(t, err, "At least one payment method is required")

		_, err = svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items:    []ItemRequest{{ProductID: 10, Quantity: 0}},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 1}},
		})
		assert.EqualError(t, err, "Item quantity must be positive")
	})

	t.Run("duplicate order number surfaces conflict", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		req := CreateRequest{
			ClientID:    1,
			Items:       []ItemRequest{{ProductID: 10, Quantity: 1}},
			Payments:    []model.PaymentMethod{{Method: "cash", Amount: 10.00}},
			OrderNumber: "ORD-1-1",
		}
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)

		_, err = svc.Create(ctx, req)
		require.ErrorIs(t, err, repository.ErrOrderNumberExists)
		// the second attempt rolled back its decrement
		assert.Equal(t, int64(4), st.products[10].Stock)
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("restores stock for every item", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		o, err := svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items:    []ItemRequest{{ProductID: 10, Quantity: 4}},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 40.00}},
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), st.products[10].Stock)

		require.NoError(t, svc.Delete(ctx, o.ID))
		assert.Equal(t, int64(5), st.products[10].Stock)
		assert.NotContains(t, st.orders, o.ID)
	})

	t.Run("skips products deleted since the order", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		o, err := svc.Create(ctx, CreateRequest{
			ClientID: 1,
			Items: []ItemRequest{
				{ProductID: 10, Quantity: 2},
				{ProductID: 11, Quantity: 1},
			},
			Payments: []model.PaymentMethod{{Method: "cash", Amount: 45.50}},
		})
		require.NoError(t, err)

		delete(st.products, 11)

		require.NoError(t, svc.Delete(ctx, o.ID))
		assert.Equal(t, int64(5), st.products[10].Stock)
		assert.NotContains(t, st.orders, o.ID)
	})

	t.Run("unknown order", func(t *testing.T) {
		st := seedStore()
		svc := NewOrderService(st)

		err := svc.Delete(ctx, 404)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Order not found", nf.Error())
	})
}
