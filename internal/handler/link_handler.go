package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/twbeatles/hwpmaster-api/internal/model"
	"github.com/twbeatles/hwpmaster-api/internal/service"
)

// LinkHandler exposes link-check runs and their reports.
type LinkHandler struct {
	linkService service.LinkCheckService
}

func NewLinkHandler(svc service.LinkCheckService) *LinkHandler {
	return &LinkHandler{linkService: svc}
}

// RegisterRoutes wires the check endpoints onto the group.
func (h *LinkHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checks", h.Check)
	rg.GET("/checks", h.List)
	rg.GET("/checks/:id", h.Get)
	rg.GET("/checks/:id/report", h.Report)
}

func (h *LinkHandler) Check(c *gin.Context) {
	var input model.CheckRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dto, err := h.linkService.Check(c.Request.Context(), &input)
	if err != nil {
		// Setup failures (bad input, unreachable bridge) fail the call;
		// individual link failures never do.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *LinkHandler) Get(c *gin.Context) {
	dto, err := h.linkService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "check run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *LinkHandler) List(c *gin.Context) {
	dtos, err := h.linkService.List(paginationFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dtos})
}

func (h *LinkHandler) Report(c *gin.Context) {
	page, err := h.linkService.Report(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "check run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// queryInt reads an integer query param with a fallback.
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}
