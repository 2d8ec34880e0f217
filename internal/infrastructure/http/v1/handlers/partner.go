package handlers

import (
	"github.com/gin-gonic/gin"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/domain"
	"dairyledger/internal/domain/catalogs/partner"
	"dairyledger/internal/infrastructure/http/v1/dto"
)

// PartnerHandler handles HTTP requests for the partner catalog.
type PartnerHandler struct {
	*BaseHandler
	service *partner.Service
}

// NewPartnerHandler creates a new partner handler.
func NewPartnerHandler(base *BaseHandler, service *partner.Service) *PartnerHandler {
	return &PartnerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Upsert handles POST /catalog/partners.
func (h *PartnerHandler) Upsert(c *gin.Context) {
	var req dto.PartnerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Upsert(c.Request.Context(), req.Name, req.Contact, req.BalanceMoney(), partner.Role(req.Role))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Get handles GET /catalog/partners/:id.
func (h *PartnerHandler) Get(c *gin.Context) {
	partnerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), partnerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// GetBalance handles GET /catalog/partners/:id/balance.
func (h *PartnerHandler) GetBalance(c *gin.Context) {
	partnerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), partnerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"partnerId":     partnerID.String(),
		"creditBalance": balance,
	})
}

// List handles GET /catalog/partners. Role query narrows to customers or
// suppliers.
func (h *PartnerHandler) List(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.IncludeInactive = c.Query("includeInactive") == "true"
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	roleStr := c.Query("role")
	if roleStr != string(partner.RoleCustomer) && roleStr != string(partner.RoleSupplier) {
		h.Error(c, apperror.NewValidation("role must be customer or supplier"))
		return
	}

	result, err := h.service.ListByRole(c.Request.Context(), partner.Role(roleStr), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Deactivate handles DELETE /catalog/partners/:id.
func (h *PartnerHandler) Deactivate(c *gin.Context) {
	partnerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), partnerID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers partner routes.
func (h *PartnerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Upsert)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/balance", h.GetBalance)
	rg.DELETE("/:id", h.Deactivate)
}
