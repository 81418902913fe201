package handler

import (
	"net/http"

	"centrale/internal/model"
	"centrale/internal/render"
	"centrale/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageHandler serves the server-rendered board pages: the editable admin
// tables and the read-only entrepreneur view.
type PageHandler struct {
	boards   *service.BoardService
	renderer *render.Renderer
	logger   *zap.Logger
}

func NewPageHandler(boards *service.BoardService, renderer *render.Renderer, logger *zap.Logger) *PageHandler {
	return &PageHandler{boards: boards, renderer: renderer, logger: logger}
}

// Admin renders the editable tables of a partition.
func (h *PageHandler) Admin(c *gin.Context) {
	raw := c.DefaultQuery("type", string(model.PartitionCoach))
	p, err := model.ParsePartition(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid centrale type"})
		return
	}
	boards, err := h.boards.List(c.Request.Context(), p)
	if err != nil {
		h.logger.Error("Admin page: failed to fetch boards",
			zap.Error(err),
			zap.String("centrale_type", string(p)),
		)
		c.String(http.StatusInternalServerError, "failed to load boards")
		return
	}
	html, err := h.renderer.Boards(boards)
	if err != nil {
		h.logger.Error("Admin page: render failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// View renders the read-only boards of the caller's partition.
func (h *PageHandler) View(c *gin.Context) {
	role, _ := c.Get("role")
	p := model.PartitionEntrepreneur
	if r, ok := role.(model.Role); ok {
		p = r.Partition()
	}
	boards, err := h.boards.List(c.Request.Context(), p)
	if err != nil {
		h.logger.Error("View page: failed to fetch boards",
			zap.Error(err),
			zap.String("centrale_type", string(p)),
		)
		c.String(http.StatusInternalServerError, "failed to load boards")
		return
	}
	html, err := h.renderer.View(boards)
	if err != nil {
		h.logger.Error("View page: render failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
