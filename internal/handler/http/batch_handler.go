package http

import (
	"errors"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/domain"
	"github.com/imageopt/imageopt/internal/dto"
	"github.com/imageopt/imageopt/internal/usecase"
)

type BatchHandler struct {
	uc *usecase.BatchUsecase
}

func NewBatchHandler(uc *usecase.BatchUsecase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

func (h *BatchHandler) RegisterRoutes(engine *ginext.Engine) {
	api := engine.Group("/api")
	api.POST("/scan", h.StartScan)
	api.POST("/process", h.StartProcess)
	api.GET("/jobs/:id", h.GetJob)
	api.POST("/jobs/:id/cancel", h.CancelJob)
	api.GET("/files", h.GetFileInfo)
}

// StartScan POST /api/scan
func (h *BatchHandler) StartScan(c *ginext.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	snap, err := h.uc.StartScan(req.Dir, req.Recursive)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("dir", req.Dir).Msg("scan request rejected")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "scan_rejected",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, dto.MapJobToResponse(snap))
}

// StartProcess POST /api/process
func (h *BatchHandler) StartProcess(c *ginext.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	snap, err := h.uc.StartBatch(c.Request.Context(), req.Files, req.Filter.ToCriteria(), req.Resize.ToSpec(), req.Output.ToSpec())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrJobRunning):
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Error:   "job_running",
				Message: err.Error(),
			})
		case errors.Is(err, domain.ErrNoFiles):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
				Error:   "no_files",
				Message: "no files match the filters",
			})
		default:
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "process_rejected",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.MapJobToResponse(snap))
}

// GetJob GET /api/jobs/:id
func (h *BatchHandler) GetJob(c *ginext.Context) {
	snap, err := h.uc.Snapshot(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: "Job not found",
		})
		return
	}
	c.JSON(http.StatusOK, dto.MapJobToResponse(snap))
}

// CancelJob POST /api/jobs/:id/cancel
func (h *BatchHandler) CancelJob(c *ginext.Context) {
	if err := h.uc.Cancel(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: "Job not found",
		})
		return
	}
	c.JSON(http.StatusOK, ginext.H{"status": "cancelling"})
}

// GetFileInfo GET /api/files?path=...
func (h *BatchHandler) GetFileInfo(c *ginext.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "path query parameter is required",
		})
		return
	}

	fi, err := h.uc.FileInfo(path)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, fi)
}
