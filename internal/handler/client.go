package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dkarimli/backoffice/internal/model"
	"github.com/dkarimli/backoffice/internal/repository"
)

// ClientHandler implements the /v1/clients CRUD endpoints.
type ClientHandler struct {
	Clients *repository.ClientRepo
}

func NewClientHandler(clients *repository.ClientRepo) *ClientHandler {
	if clients == nil {
		panic("nil repository passed to NewClientHandler")
	}
	return &ClientHandler{Clients: clients}
}

type clientReq struct {
	Name     *string         `json:"name"`
	Email    *string         `json:"email"`
	Phone    *string         `json:"phone"`
	Address  *map[string]any `json:"address"`
	Company  *string         `json:"company"`
	Notes    *string         `json:"notes"`
	IsActive *bool           `json:"is_active"`
}

// List handles GET /v1/clients.
func (h *ClientHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	clients, err := h.Clients.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load clients"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(clients), "data": clients})
}

// Get handles GET /v1/clients/:id.
func (h *ClientHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cl, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load client"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": cl})
}

// Create handles POST /v1/clients.
func (h *ClientHandler) Create(c echo.Context) error {
	var req clientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" ||
		req.Email == nil || strings.TrimSpace(*req.Email) == "" ||
		req.Phone == nil || strings.TrimSpace(*req.Phone) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/phone required"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	cl := model.Client{
		Name:      strings.TrimSpace(*req.Name),
		Email:     *req.Email,
		Phone:     strings.TrimSpace(*req.Phone),
		IsActive:  true,
		CreatedBy: actorID,
	}
	if req.Address != nil {
		cl.Address = *req.Address
	}
	if req.Company != nil {
		cl.Company = *req.Company
	}
	if req.Notes != nil {
		cl.Notes = *req.Notes
	}
	if req.IsActive != nil {
		cl.IsActive = *req.IsActive
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Clients.Create(ctx, &cl); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Client with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create client failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": cl})
}

// Update handles PUT /v1/clients/:id. Absent fields stay unchanged.
func (h *ClientHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	var req clientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	cl, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load client"})
	}

	if req.Name != nil {
		cl.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		cl.Email = *req.Email
	}
	if req.Phone != nil {
		cl.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		cl.Address = *req.Address
	}
	if req.Company != nil {
		cl.Company = *req.Company
	}
	if req.Notes != nil {
		cl.Notes = *req.Notes
	}
	if req.IsActive != nil {
		cl.IsActive = *req.IsActive
	}

	if err := h.Clients.Update(ctx, &cl); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Client with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update client failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": cl})
}

// Delete handles DELETE /v1/clients/:id.
func (h *ClientHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Clients.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete client failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{}})
}
