package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/registers/dailystock"
	"dairyledger/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the daily stock register.
type StockHandler struct {
	*BaseHandler
	service *dailystock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *dailystock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RecordAdjustment handles POST /stock/adjustments.
func (h *StockHandler) RecordAdjustment(c *gin.Context) {
	var req dto.AdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid date, expected YYYY-MM-DD").WithDetail("date", req.Date))
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	delta := types.CoerceQuantity(req.Delta, 0)
	movement, err := h.service.RecordAdjustment(c.Request.Context(), date, productID, delta, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, movement)
}

// Snapshots handles GET /stock/snapshots?date=YYYY-MM-DD.
func (h *StockHandler) Snapshots(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}

	snaps, err := h.service.SnapshotsForDate(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": snaps})
}

// Movements handles GET /stock/movements/:productId.
func (h *StockHandler) Movements(c *gin.Context) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	filter := dailystock.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if typeStr := c.Query("type"); typeStr != "" {
		mt := entity.MovementType(typeStr)
		if !mt.Valid() {
			h.Error(c, apperror.NewValidation("type must be sale, purchase or adjustment"))
			return
		}
		filter.Type = &mt
	}
	if fromStr := c.Query("fromDate"); fromStr != "" {
		from, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid fromDate, expected YYYY-MM-DD"))
			return
		}
		filter.FromDate = &from
	}
	if toStr := c.Query("toDate"); toStr != "" {
		to, err := time.Parse(dateLayout, toStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid toDate, expected YYYY-MM-DD"))
			return
		}
		filter.ToDate = &to
	}

	movements, err := h.service.MovementHistory(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": movements})
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/adjustments", h.RecordAdjustment)
	rg.GET("/snapshots", h.Snapshots)
	rg.GET("/movements/:productId", h.Movements)
}
