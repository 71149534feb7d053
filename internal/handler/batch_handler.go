package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/twbeatles/hwpmaster-api/internal/model"
	"github.com/twbeatles/hwpmaster-api/internal/repository"
	"github.com/twbeatles/hwpmaster-api/internal/service"
)

// BatchHandler exposes batch run submission, status, and cancellation.
type BatchHandler struct {
	batchService service.BatchService
}

func NewBatchHandler(svc service.BatchService) *BatchHandler {
	return &BatchHandler{batchService: svc}
}

// RegisterRoutes wires the batch endpoints onto the group.
func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/batches", h.Submit)
	rg.GET("/batches", h.List)
	rg.GET("/batches/:id", h.Get)
	rg.DELETE("/batches/:id", h.Cancel)
}

func (h *BatchHandler) Submit(c *gin.Context) {
	var input model.SubmitBatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	jobID, err := h.batchService.Submit(&input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

func (h *BatchHandler) Get(c *gin.Context) {
	dto, err := h.batchService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *BatchHandler) Cancel(c *gin.Context) {
	err := h.batchService.Cancel(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "batch run not found"})
		case errors.Is(err, service.ErrNotRunning):
			c.JSON(http.StatusConflict, gin.H{"error": "batch run is not running"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancellation requested"})
}

func (h *BatchHandler) List(c *gin.Context) {
	dtos, err := h.batchService.List(paginationFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dtos})
}

func paginationFromQuery(c *gin.Context) repository.Pagination {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "page_size", 10)
	return repository.Pagination{Page: page, PageSize: size}
}
