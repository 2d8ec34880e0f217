package handlers

import (
	"github.com/gin-gonic/gin"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/catalogs/pricing"
	"dairyledger/internal/infrastructure/http/v1/dto"
)

// PricingHandler handles HTTP requests for partner price overrides.
type PricingHandler struct {
	*BaseHandler
	service *pricing.Service
}

// NewPricingHandler creates a new pricing handler.
func NewPricingHandler(base *BaseHandler, service *pricing.Service) *PricingHandler {
	return &PricingHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Set handles PUT /catalog/prices.
func (h *PricingHandler) Set(c *gin.Context) {
	var req dto.PriceOverrideRequest
	if !h.BindJSON(c, &req) {
		return
	}

	partnerID, productID, ok := h.parsePair(c, req.PartnerID, req.ProductID)
	if !ok {
		return
	}

	price := types.CoerceMoney(req.Price, types.Zero())
	if err := h.service.Set(c.Request.Context(), partnerID, productID, price); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "price override set")
}

// Remove handles DELETE /catalog/prices/:partnerId/:productId.
func (h *PricingHandler) Remove(c *gin.Context) {
	partnerID, productID, ok := h.parsePair(c, c.Param("partnerId"), c.Param("productId"))
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), partnerID, productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// PriceFor handles GET /catalog/prices/:partnerId/:productId.
// Returns the effective unit price (override or base).
func (h *PricingHandler) PriceFor(c *gin.Context) {
	partnerID, productID, ok := h.parsePair(c, c.Param("partnerId"), c.Param("productId"))
	if !ok {
		return
	}

	price, err := h.service.PriceFor(c.Request.Context(), partnerID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"partnerId": partnerID.String(),
		"productId": productID.String(),
		"price":     price,
	})
}

// ListForPartner handles GET /catalog/prices/:partnerId.
func (h *PricingHandler) ListForPartner(c *gin.Context) {
	partnerID, err := id.Parse(c.Param("partnerId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid partnerId format"))
		return
	}

	overrides, err := h.service.ListForPartner(c.Request.Context(), partnerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": overrides})
}

func (h *PricingHandler) parsePair(c *gin.Context, partnerStr, productStr string) (id.ID, id.ID, bool) {
	partnerID, err := id.Parse(partnerStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid partnerId format"))
		return id.Nil(), id.Nil(), false
	}
	productID, err := id.Parse(productStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return id.Nil(), id.Nil(), false
	}
	return partnerID, productID, true
}

// RegisterRoutes registers pricing routes.
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("", h.Set)
	rg.GET("/:partnerId", h.ListForPartner)
	rg.GET("/:partnerId/:productId", h.PriceFor)
	rg.DELETE("/:partnerId/:productId", h.Remove)
}
