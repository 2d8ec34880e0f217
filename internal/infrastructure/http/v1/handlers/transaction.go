package handlers

import (
	"github.com/gin-gonic/gin"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/domain/ledger"
	"dairyledger/internal/infrastructure/http/v1/dto"
)

// TransactionHandler handles HTTP requests for the transaction ledger.
type TransactionHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(base *BaseHandler, service *ledger.Service) *TransactionHandler {
	return &TransactionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Record handles POST /ledger/transactions.
func (h *TransactionHandler) Record(c *gin.Context) {
	var req dto.TransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	recordReq, err := req.ToRecordRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.Record(c.Request.Context(), recordReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, t)
}

// Get handles GET /ledger/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), txID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// ListByDate handles GET /ledger/transactions?date=YYYY-MM-DD&kind=sale.
func (h *TransactionHandler) ListByDate(c *gin.Context) {
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

	list, err := h.service.ListByDate(c.Request.Context(), date, kind)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": list})
}

// ListUnsynced handles GET /ledger/transactions/unsynced.
func (h *TransactionHandler) ListUnsynced(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 100)

	list, err := h.service.ListUnsynced(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": list})
}

// MarkSynced handles POST /ledger/transactions/mark-synced.
func (h *TransactionHandler) MarkSynced(c *gin.Context) {
	var req dto.MarkSyncedRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ids := make([]id.ID, 0, len(req.IDs))
	for _, s := range req.IDs {
		parsed, err := id.Parse(s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid transaction id").WithDetail("id", s))
			return
		}
		ids = append(ids, parsed)
	}

	if err := h.service.MarkSynced(c.Request.Context(), ids); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "transactions marked synced")
}

// RegisterRoutes registers transaction routes.
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Record)
	rg.GET("", h.ListByDate)
	rg.GET("/unsynced", h.ListUnsynced)
	rg.POST("/mark-synced", h.MarkSynced)
	rg.GET("/:id", h.Get)
}
