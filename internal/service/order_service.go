package service

import (
	"context"
	"errors"
	"math"

	"github.com/dkarimli/backoffice/internal/model"
	"github.com/dkarimli/backoffice/internal/repository"
	"github.com/dkarimli/backoffice/internal/utils"
)

// OrderService implements order creation and deletion. Both operations
// mutate product stock as a side effect, so each runs inside a single
// unit of work: on any failure the transaction rolls back and no stock
// change or order row survives.
type OrderService struct {
	uow repository.UnitOfWork
}

func NewOrderService(uow repository.UnitOfWork) *OrderService {
	if uow == nil {
		panic("nil unit of work passed to NewOrderService")
	}
	return &OrderService{uow: uow}
}

// ItemRequest is one requested order line.
type ItemRequest struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// CreateRequest carries everything needed to compose an order.
// OrderNumber is normally empty and generated server-side.
type CreateRequest struct {
	ClientID    uint64
	Items       []ItemRequest
	Payments    []model.PaymentMethod
	Notes       string
	OrderNumber string
	CreatedBy   uint64
}

// Create validates req and persists the order. The validation sequence
// short-circuits on the first failure:
//
//  1. the client must exist
//  2. per item, in input order: the product must exist, be active and
//     have enough stock (the error reports the available quantity)
//  3. payment amounts must sum to the computed total within 0.01
//
// Unit prices are captured from the product at validation time; stock
// is decremented in the same transaction that inserts the order, so a
// failure on the third item also discards the decrements of the first
// two.
func (s *OrderService) Create(ctx context.Context, req CreateRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, invalidf("At least one item is required")
	}
	if len(req.Payments) == 0 {
		return nil, invalidf("At least one payment method is required")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, invalidf("Item quantity must be positive")
		}
	}

	var created *model.Order
	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		if _, err := tx.ClientByID(ctx, req.ClientID); err != nil {
			if errors.Is(err, repository.ErrClientNotFound) {
				return &NotFoundError{Entity: "client", ID: req.ClientID}
			}
			return err
		}

		total := 0.0
		items := make([]model.OrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			p, err := tx.ProductForUpdate(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return &NotFoundError{Entity: "product", ID: it.ProductID}
				}
				return err
			}
			if !p.IsActive {
				return invalidf("Product %s is not available", p.Name)
			}
			if p.Stock < it.Quantity {
				return invalidf("Insufficient stock for %s. Available: %d", p.Name, p.Stock)
			}
			lineTotal := p.Price * float64(it.Quantity)
			total += lineTotal
			items = append(items, model.OrderItem{
				ProductID: p.ID,
				Quantity:  it.Quantity,
				Price:     p.Price,
				Total:     lineTotal,
			})
			if err := tx.SetProductStock(ctx, p.ID, p.Stock-it.Quantity); err != nil {
				return err
			}
		}

		paid := 0.0
		for _, pm := range req.Payments {
			paid += pm.Amount
		}
		if math.Abs(paid-total) > model.PaymentTolerance {
			return invalidf("Payment methods total must equal order total")
		}

		number := req.OrderNumber
		if number == "" {
			number = utils.NewOrderNumber()
		}
		o := &model.Order{
			OrderNumber: number,
			ClientID:    req.ClientID,
			Items:       items,
			TotalAmount: total,
			Payments:    req.Payments,
			Status:      model.StatusPending,
			Notes:       req.Notes,
			CreatedBy:   req.CreatedBy,
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete reverses an order: every line item's quantity is added back
// to its product's stock, then the order is removed. Products that no
// longer exist are skipped silently. Restores and deletion commit
// together; any failure leaves both stock and order untouched.
func (s *OrderService) Delete(ctx context.Context, id uint64) error {
	return s.uow.Do(ctx, func(tx repository.Tx) error {
		o, err := tx.OrderByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return &NotFoundError{Entity: "order", ID: id}
			}
			return err
		}
		for _, it := range o.Items {
			p, err := tx.ProductForUpdate(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					continue
				}
				return err
			}
			if err := tx.SetProductStock(ctx, p.ID, p.Stock+it.Quantity); err != nil {
				return err
			}
		}
		return tx.DeleteOrder(ctx, o.ID)
	})
}
