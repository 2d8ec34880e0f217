package handlers

import (
	"github.com/gin-gonic/gin"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/domain/ledger"
	"dairyledger/internal/domain/reports"
)

// ReportsHandler handles HTTP requests for valuation and ledger queries.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// InventorySnapshot handles GET /reports/inventory?date=YYYY-MM-DD.
func (h *ReportsHandler) InventorySnapshot(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}

	snap, err := h.service.Snapshot(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, snap)
}

// DailyDetail handles GET /reports/daily?date=YYYY-MM-DD&kind=sale.
func (h *ReportsHandler) DailyDetail(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}

	var kind *ledger.Kind
	if kindStr := c.Query("kind"); kindStr != "" {
		k := ledger.Kind(kindStr)
		if k != ledger.KindSale && k != ledger.KindPurchase {
			h.Error(c, apperror.NewValidation("kind must be sale or purchase"))
			return
		}
		kind = &k
	}

	details, err := h.service.DailyDetail(c.Request.Context(), date, kind)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": details})
}

// RangeAggregate handles GET /reports/range?fromDate=...&toDate=...
func (h *ReportsHandler) RangeAggregate(c *gin.Context) {
	from, ok := h.ParseDateQuery(c, "fromDate")
	if !ok {
		return
	}
	to, ok := h.ParseDateQuery(c, "toDate")
	if !ok {
		return
	}

	report, err := h.service.RangeAggregate(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// RecomputeSummary handles POST /reports/summary?date=YYYY-MM-DD.
func (h *ReportsHandler) RecomputeSummary(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}

	summary, err := h.service.RecomputeDailySummary(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// GetSummary handles GET /reports/summary?date=YYYY-MM-DD.
func (h *ReportsHandler) GetSummary(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}

	summary, err := h.service.DailySummary(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// MarkSummarySynced handles POST /reports/summary/mark-synced?date=YYYY-MM-DD.
func (h *ReportsHandler) MarkSummarySynced(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}

	if err := h.service.MarkSummarySynced(c.Request.Context(), date); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "summary marked synced")
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/inventory", h.InventorySnapshot)
	rg.GET("/daily", h.DailyDetail)
	rg.GET("/range", h.RangeAggregate)
	rg.GET("/summary", h.GetSummary)
	rg.POST("/summary", h.RecomputeSummary)
	rg.POST("/summary/mark-synced", h.MarkSummarySynced)
}
