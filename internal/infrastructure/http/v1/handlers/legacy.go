package handlers

import (
	"github.com/gin-gonic/gin"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/infrastructure/storage/postgres/legacy_repo"
)

// LegacyHandler serves the old sales shapes for tooling that has not moved to
// the transaction endpoints yet. Read only.
type LegacyHandler struct {
	*BaseHandler
	repo *legacy_repo.SalesRepo
}

// NewLegacyHandler creates a new legacy handler.
func NewLegacyHandler(base *BaseHandler, repo *legacy_repo.SalesRepo) *LegacyHandler {
	return &LegacyHandler{
		BaseHandler: base,
		repo:        repo,
	}
}

// Sales handles GET /legacy/sales?date=YYYY-MM-DD.
func (h *LegacyHandler) Sales(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}

	sales, err := h.repo.SalesForDate(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": sales})
}

// SaleItems handles GET /legacy/sales/:id/items.
func (h *LegacyHandler) SaleItems(c *gin.Context) {
	saleID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	items, err := h.repo.ItemsForSale(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// RegisterRoutes registers legacy routes.
func (h *LegacyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sales", h.Sales)
	rg.GET("/sales/:id/items", h.SaleItems)
}
