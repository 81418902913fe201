package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"centrale/internal/files"
	"centrale/internal/model"
	"centrale/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BoardHandler struct {
	boards *service.BoardService
	logger *zap.Logger
}

func NewBoardHandler(boards *service.BoardService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{boards: boards, logger: logger}
}

// partition resolves the centrale type from the ?type= query and checks it
// against the caller's role. Entrepreneurs are pinned to their own set.
func (h *BoardHandler) partition(c *gin.Context) (model.Partition, bool) {
	raw := c.DefaultQuery("type", string(model.PartitionCoach))
	p, err := model.ParsePartition(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid centrale type"})
		return "", false
	}
	role, _ := c.Get("role")
	if role == model.RoleEntrepreneur && p != model.PartitionEntrepreneur {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return "", false
	}
	return p, true
}

func (h *BoardHandler) ListBoards(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	boards, err := h.boards.List(c.Request.Context(), p)
	if err != nil {
		h.logger.Error("ListBoards: failed to fetch boards",
			zap.Error(err),
			zap.String("centrale_type", string(p)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch boards"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

func (h *BoardHandler) GetBoard(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	board, err := h.boards.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Header("ETag", strconv.FormatInt(board.Version, 10))
	c.JSON(http.StatusOK, board)
}

type createBoardRequest struct {
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (h *BoardHandler) CreateBoard(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	var req createBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	board, err := h.boards.Create(c.Request.Context(), p, req.Name, req.Icon, req.Color)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	h.logger.Info("Board created via API",
		zap.String("board_id", board.ID),
		zap.String("centrale_type", string(p)),
	)
	c.JSON(http.StatusCreated, board)
}

// UpdateBoard replaces a whole board document. An If-Match header with the
// last seen version turns the write into a compare-and-swap; without it the
// last write wins.
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	var board model.Board
	if err := c.ShouldBindJSON(&board); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	board.ID = c.Param("id")

	var expectedVersion *int64
	if raw := c.GetHeader("If-Match"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid If-Match header"})
			return
		}
		expectedVersion = &v
	}

	updated, err := h.boards.Update(c.Request.Context(), p, &board, expectedVersion)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Header("ETag", strconv.FormatInt(updated.Version, 10))
	c.JSON(http.StatusOK, updated)
}

func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.boards.Delete(c.Request.Context(), p, id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	h.logger.Info("Board deleted via API",
		zap.String("board_id", id),
		zap.String("centrale_type", string(p)),
	)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UpdateRow patches one row: its item label and any subset of cells. The
// payload is the same cell wire format the documents use.
func (h *BoardHandler) UpdateRow(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	var patch service.RowPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	board, err := h.boards.UpdateRow(c.Request.Context(), p, c.Param("sectionID"), c.Param("rowID"), patch)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, board)
}

type saveAllRequest struct {
	Boards []json.RawMessage `json:"boards" binding:"required"`
}

// SaveAll replaces every board of a partition in one shot. Legacy section
// shaped entries are accepted and migrated on the way in.
func (h *BoardHandler) SaveAll(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	var req saveAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	boards := make([]*model.Board, 0, len(req.Boards))
	for _, raw := range req.Boards {
		var board *model.Board
		if model.IsLegacySection(raw) {
			migrated, err := model.FromLegacySection(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			board = migrated
		} else {
			board = &model.Board{}
			if err := json.Unmarshal(raw, board); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board document"})
				return
			}
		}
		boards = append(boards, board)
	}
	if err := h.boards.SaveAll(c.Request.Context(), p, boards); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	h.logger.Info("Partition saved",
		zap.String("centrale_type", string(p)),
		zap.Int("boards", len(boards)),
	)
	c.JSON(http.StatusOK, gin.H{"status": "saved", "count": len(boards)})
}

// UploadFile receives one multipart attachment for a fichier cell. The
// three-file cap is enforced before the upload is stored.
func (h *BoardHandler) UploadFile(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	boardID := c.PostForm("board_id")
	rowID := c.PostForm("row_id")
	columnID := c.PostForm("column_id")
	if boardID == "" || rowID == "" || columnID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "board_id, row_id and column_id are required"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer src.Close()

	ref, board, err := h.boards.UploadFile(c.Request.Context(), p, boardID, rowID, columnID, fileHeader.Filename, src)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	viewer, downloadable := files.Classify(ref.Name)
	c.JSON(http.StatusOK, gin.H{
		"file":         ref,
		"viewer":       viewer,
		"downloadable": downloadable,
		"board":        board,
	})
}

type attachLinkRequest struct {
	BoardID  string `json:"board_id" binding:"required"`
	RowID    string `json:"row_id" binding:"required"`
	ColumnID string `json:"column_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	URL      string `json:"url" binding:"required"`
}

// AttachLink adds an external link to a fichier cell; it counts against the
// same cap as uploads but stores nothing on disk.
func (h *BoardHandler) AttachLink(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	var req attachLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	board, err := h.boards.AttachLink(c.Request.Context(), p, req.BoardID, req.RowID, req.ColumnID, req.Name, req.URL)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, board)
}

type deleteFileRequest struct {
	BoardID  string `json:"board_id" binding:"required"`
	RowID    string `json:"row_id" binding:"required"`
	ColumnID string `json:"column_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

func (h *BoardHandler) DeleteFile(c *gin.Context) {
	p, ok := h.partition(c)
	if !ok {
		return
	}
	var req deleteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	board, err := h.boards.DeleteFile(c.Request.Context(), p, req.BoardID, req.RowID, req.ColumnID, req.Name)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, board)
}

// Catalog exposes the icon list, board colors, status presets, and column
// types the pickers render.
func (h *BoardHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"icons":          model.AvailableIcons,
		"colors":         model.BoardColors,
		"status_presets": model.StatusPresets,
		"column_types":   model.ColumnTypes(),
	})
}
