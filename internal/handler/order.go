package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dkarimli/backoffice/internal/model"
	"github.com/dkarimli/backoffice/internal/queue"
	"github.com/dkarimli/backoffice/internal/repository"
	"github.com/dkarimli/backoffice/internal/service"
)

// OrderHandler implements the /v1/orders endpoints. Creation and
// deletion are delegated to the order service so stock movements and
// order rows always commit together; reads and field updates go to the
// order repository directly.
type OrderHandler struct {
	Orders *repository.OrderRepo
	Svc    *service.OrderService
}

func NewOrderHandler(orders *repository.OrderRepo, svc *service.OrderService) *OrderHandler {
	if orders == nil || svc == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders, Svc: svc}
}

type orderItemReq struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}
type orderPaymentReq struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}
type createOrderReq struct {
	ClientID       uint64            `json:"client_id"`
	Items          []orderItemReq    `json:"items"`
	PaymentMethods []orderPaymentReq `json:"payment_methods"`
	Notes          string            `json:"notes"`
}
type updateOrderReq struct {
	Status         *string            `json:"status"`
	PaymentMethods *[]orderPaymentReq `json:"payment_methods"`
	Notes          *string            `json:"notes"`
}

// List handles GET /v1/orders.
func (h *OrderHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	orders, err := h.Orders.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(orders), "data": orders})
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	detail, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": detail})
}

// Create handles POST /v1/orders. The whole composition runs in one
// transaction inside the order service; this handler only binds the
// request, maps errors to status codes and publishes the created
// event after the commit.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ClientID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id is required"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	items := make([]service.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	payments := make([]model.PaymentMethod, 0, len(req.PaymentMethods))
	for _, p := range req.PaymentMethods {
		payments = append(payments, model.PaymentMethod{Method: p.Method, Amount: p.Amount})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	order, err := h.Svc.Create(ctx, service.CreateRequest{
		ClientID:  req.ClientID,
		Items:     items,
		Payments:  payments,
		Notes:     req.Notes,
		CreatedBy: actorID,
	})
	if err != nil {
		return orderError(c, err)
	}

	// publish after commit; delivery failures must not fail the request
	if err := queue.PublishOrderCreated(ctx, queue.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ClientID:    order.ClientID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		CreatedBy:   order.CreatedBy,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("order.created publish failed: %v", err)
	}

	detail, err := h.Orders.GetByID(ctx, order.ID)
	if err != nil {
		// the order committed; fall back to the service result
		return c.JSON(http.StatusCreated, echo.Map{"data": order})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": detail})
}

// Update handles PUT /v1/orders/:id. Only status, payment methods and
// notes are mutable; items and totals are frozen at creation. Replaced
// payment methods are re-validated against the stored total.
func (h *OrderHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req updateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	detail, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
	}

	upd := repository.OrderUpdate{Notes: req.Notes}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if !model.ValidStatus(status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		upd.Status = &status
	}
	if req.PaymentMethods != nil {
		if len(*req.PaymentMethods) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "At least one payment method is required"})
		}
		paid := 0.0
		entries := make([]repository.PaymentEntry, 0, len(*req.PaymentMethods))
		for _, p := range *req.PaymentMethods {
			paid += p.Amount
			entries = append(entries, repository.PaymentEntry{Method: p.Method, Amount: p.Amount})
		}
		if diff := paid - detail.TotalAmount; diff > model.PaymentTolerance || diff < -model.PaymentTolerance {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Payment methods total must equal order total"})
		}
		upd.Payments = entries
	}

	if err := h.Orders.Update(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update order failed"})
	}

	updated, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": updated})
}

// Delete handles DELETE /v1/orders/:id. Stock restoration and the
// order removal run in one transaction inside the order service.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, id); err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{}})
}

// orderError maps service errors onto HTTP responses: NotFound -> 404,
// ValidationError -> 400, duplicate order number -> 409, rest -> 500.
func orderError(c echo.Context, err error) error {
	var nf *service.NotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Error()})
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
	}
	if errors.Is(err, repository.ErrOrderNumberExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order number already exists"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
