package memos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/http-server/middleware/authn"
	"lifecursor/internal/lib/api/response"
	"lifecursor/internal/lib/logger/sl"
	"lifecursor/internal/services/memos"
)

type Memos interface {
	Create(ctx context.Context, userID int64, in models.MemoInput) (*models.Memo, error)
	List(ctx context.Context, userID int64) ([]models.Memo, error)
	DeleteMany(ctx context.Context, userID int64, ids []int64) (int64, error)
	Update(ctx context.Context, userID, memoID int64, in models.MemoInput) (*models.Memo, error)
}

type DeleteRequest struct {
	MemoIDs []int64 `json:"memo_ids"`
}

type Handler struct {
	log   *slog.Logger
	memos Memos
}

func New(log *slog.Logger, memos Memos) *Handler {
	return &Handler{
		log:   log,
		memos: memos,
	}
}

func (h *Handler) Create(c *gin.Context) {
	const op = "handlers.memos.Create"

	var req models.MemoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	memo, err := h.memos.Create(c.Request.Context(), authn.User(c).ID, req)
	if err != nil {
		h.fail(c, op, err)
		return
	}

	c.JSON(http.StatusOK, memo)
}

func (h *Handler) List(c *gin.Context) {
	const op = "handlers.memos.List"

	list, err := h.memos.List(c.Request.Context(), authn.User(c).ID)
	if err != nil {
		h.fail(c, op, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) DeleteMany(c *gin.Context) {
	const op = "handlers.memos.DeleteMany"

	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.memos.DeleteMany(c.Request.Context(), authn.User(c).ID, req.MemoIDs)
	if err != nil {
		h.fail(c, op, err)
		return
	}

	c.JSON(http.StatusOK, response.Message{Message: fmt.Sprintf("%d memos deleted", n)})
}

func (h *Handler) Update(c *gin.Context) {
	const op = "handlers.memos.Update"

	memoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid memo id")
		return
	}

	var req models.MemoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	memo, err := h.memos.Update(c.Request.Context(), authn.User(c).ID, memoID, req)
	if err != nil {
		h.fail(c, op, err)
		return
	}

	c.JSON(http.StatusOK, memo)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, memos.ErrNoMemoIDs):
		response.Error(c, http.StatusBadRequest, "No memo IDs provided")
	case errors.Is(err, memos.ErrMemoNotFound):
		response.Error(c, http.StatusNotFound, "Memo not found")
	default:
		h.log.Error("memo request failed", slog.String("op", op), sl.Err(err))
		response.Internal(c)
	}
}
