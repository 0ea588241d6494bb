package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dkarimli/backoffice/internal/model"
	"github.com/dkarimli/backoffice/internal/repository"
)

// CommentHandler implements the /v1/comments CRUD endpoints.
type CommentHandler struct {
	Comments *repository.CommentRepo
}

func NewCommentHandler(comments *repository.CommentRepo) *CommentHandler {
	if comments == nil {
		panic("nil repository passed to NewCommentHandler")
	}
	return &CommentHandler{Comments: comments}
}

type commentReq struct {
	Content   *string `json:"content"`
	RelatedTo *string `json:"related_to"`
	RelatedID *uint64 `json:"related_id"`
}

// List handles GET /v1/comments with optional ?related_to= and
// ?related_id= filters.
func (h *CommentHandler) List(c echo.Context) error {
	relatedTo := strings.TrimSpace(c.QueryParam("related_to"))
	if relatedTo != "" && !model.ValidRelatedTo(relatedTo) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid related_to"})
	}
	var relatedID uint64
	if raw := c.QueryParam("related_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid related_id"})
		}
		relatedID = id
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	comments, err := h.Comments.List(ctx, relatedTo, relatedID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load comments"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(comments), "data": comments})
}

// Get handles GET /v1/comments/:id.
func (h *CommentHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load comment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": d})
}

// Create handles POST /v1/comments.
func (h *CommentHandler) Create(c echo.Context) error {
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Content == nil || strings.TrimSpace(*req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}
	if req.RelatedTo == nil || !model.ValidRelatedTo(*req.RelatedTo) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid related_to"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	cm := model.Comment{
		Content:   strings.TrimSpace(*req.Content),
		RelatedTo: *req.RelatedTo,
		RelatedID: req.RelatedID,
		CreatedBy: actorID,
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Comments.Create(ctx, &cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": cm})
}

// Update handles PUT /v1/comments/:id. Only the text content can
// change; retargeting a comment is not supported.
func (h *CommentHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Content == nil || strings.TrimSpace(*req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Comments.Update(ctx, id, strings.TrimSpace(*req.Content)); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update comment failed"})
	}
	d, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load comment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": d})
}

// Delete handles DELETE /v1/comments/:id.
func (h *CommentHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete comment failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{}})
}
