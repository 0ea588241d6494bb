package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dkarimli/backoffice/internal/model"
	"github.com/dkarimli/backoffice/internal/repository"
)

// ProductHandler implements the /v1/products CRUD endpoints. Stock and
// price edits here are direct inventory management; order-driven stock
// changes go through the order service instead.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(products *repository.ProductRepo) *ProductHandler {
	if products == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Products: products}
}

type productReq struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int64   `json:"stock"`
	SKU         *string  `json:"sku"`
	IsActive    *bool    `json:"is_active"`
}

// List handles GET /v1/products.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	products, err := h.Products.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load products"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(products), "data": products})
}

// Get handles GET /v1/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

// Create handles POST /v1/products.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" ||
		req.Description == nil || strings.TrimSpace(*req.Description) == "" ||
		req.Category == nil || strings.TrimSpace(*req.Category) == "" ||
		req.Price == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/description/price/category required"})
	}
	if *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Price must be positive"})
	}
	if req.Stock != nil && *req.Stock < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Stock cannot be negative"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	p := model.Product{
		Name:        strings.TrimSpace(*req.Name),
		Description: *req.Description,
		Price:       *req.Price,
		Category:    strings.TrimSpace(*req.Category),
		IsActive:    true,
		CreatedBy:   actorID,
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Products.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrSKUExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Product with this SKU already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": p})
}

// Update handles PUT /v1/products/:id. Absent fields stay unchanged.
func (h *ProductHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Price != nil && *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Price must be positive"})
	}
	if req.Stock != nil && *req.Stock < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Stock cannot be negative"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load product"})
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := h.Products.Update(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrSKUExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Product with this SKU already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

// Delete handles DELETE /v1/products/:id.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete product failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{}})
}
