package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dkarimli/backoffice/internal/config"
	"github.com/dkarimli/backoffice/internal/model"
	"github.com/dkarimli/backoffice/internal/repository"
	"github.com/dkarimli/backoffice/internal/utils"
)

// UserHandler implements the /v1/users CRUD endpoints. Access is gated
// by the permission middleware; these handlers only deal with the data.
type UserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo) *UserHandler {
	if users == nil || tokens == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

type userReq struct {
	Name        *string            `json:"name"`
	Email       *string            `json:"email"`
	Password    *string            `json:"password"`
	Role        *string            `json:"role"`
	Permissions *model.Permissions `json:"permissions"`
	IsActive    *bool              `json:"is_active"`
}

// List handles GET /v1/users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load users"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(users), "data": users})
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u})
}

// Create handles POST /v1/users. Unlike self-registration this can
// assign a role and a permission map directly.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" ||
		req.Email == nil || strings.TrimSpace(*req.Email) == "" ||
		req.Password == nil || *req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	if len(*req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}
	role := model.RoleUser
	if req.Role != nil {
		role = strings.ToLower(strings.TrimSpace(*req.Role))
		if role != model.RoleAdmin && role != model.RoleUser {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u := model.User{
		Name:         strings.TrimSpace(*req.Name),
		Email:        *req.Email,
		PasswordHash: hash,
		Role:         role,
		Permissions:  model.DefaultPermissions(),
		IsActive:     true,
	}
	if req.Permissions != nil {
		u.Permissions = *req.Permissions
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if _, err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "User already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": u})
}

// Update handles PUT /v1/users/:id. Absent fields stay unchanged; a
// supplied password is re-hashed before it is stored.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
		}
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
		}
		u.PasswordHash = hash
	}
	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if role != model.RoleAdmin && role != model.RoleUser {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
		}
		u.Role = role
	}
	if req.Permissions != nil {
		u.Permissions = *req.Permissions
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := h.Users.Update(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already in use"})
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	// a deactivated user must not be able to refresh back in
	if req.IsActive != nil && !*req.IsActive {
		_ = h.Tokens.RevokeAllForUser(ctx, u.ID)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u})
}

// Delete handles DELETE /v1/users/:id. Users cannot delete their own
// account, which keeps at least the acting admin alive.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if id == actorID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "You cannot delete yourself"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	_ = h.Tokens.RevokeAllForUser(ctx, id)
	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{}})
}

// reqCtx bounds database work to a few seconds per request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
