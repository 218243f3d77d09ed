package api

import (
	"errors"
	"net/http"
	"time"

	"cart_service/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// salesHandler holds the sales service and implements HTTP handlers for
// sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

type saleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createSaleRequest struct {
	ClientID string            `json:"client_id"`
	Items    []saleItemRequest `json:"items"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// translate maps a service failure onto an HTTP status and taxonomy name.
// Internal detail never reaches the client; it only goes to the logs.
func translate(err error) (status int, kind, message string) {
	switch {
	case errors.Is(err, sales.ErrValidation):
		return http.StatusBadRequest, "ValidationError", err.Error()
	case errors.Is(err, sales.ErrBusinessRule):
		return http.StatusUnprocessableEntity, "BusinessRule", err.Error()
	case errors.Is(err, sales.ErrNotFound):
		return http.StatusNotFound, "NotFound", err.Error()
	default:
		return http.StatusInternalServerError, "Internal", "unexpected error"
	}
}

func (h *salesHandler) ok(ctx *gin.Context, start time.Time, status int, message string, data any) {
	ctx.JSON(status, Response{
		Message:   message,
		Timestamp: time.Now().UTC(),
		ElapsedMs: time.Since(start).Milliseconds(),
		Data:      data,
	})
}

func (h *salesHandler) fail(ctx *gin.Context, start time.Time, op string, err error) {
	status, kind, message := translate(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
	} else {
		h.logger.Warn("request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	ctx.JSON(status, Response{
		Message:   message,
		Timestamp: time.Now().UTC(),
		ElapsedMs: time.Since(start).Milliseconds(),
		Error:     kind,
	})
}

// handleCreateSale handles POST /sales.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	start := time.Now()

	var req createSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		h.fail(ctx, start, "CreateSale", sales.ErrValidation)
		return
	}

	items := make([]*sales.SaleItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, &sales.SaleItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	sale, err := h.salesService.CreateSale(req.ClientID, items)
	if err != nil {
		h.fail(ctx, start, "CreateSale", err)
		return
	}
	h.ok(ctx, start, http.StatusCreated, "sale created", sale)
}

// handleAddItem handles POST /sales/:id/items.
func (h *salesHandler) handleAddItem(ctx *gin.Context) {
	start := time.Now()
	saleID := ctx.Param("id")

	var req saleItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		h.fail(ctx, start, "AddItem", sales.ErrValidation)
		return
	}

	item, err := h.salesService.AddItem(saleID, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(ctx, start, "AddItem", err)
		return
	}
	h.ok(ctx, start, http.StatusCreated, "item added", item)
}

// handleUpdateItemQuantity handles PUT /sales/items/:id.
func (h *salesHandler) handleUpdateItemQuantity(ctx *gin.Context) {
	start := time.Now()
	itemID := ctx.Param("id")

	var req updateQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		h.fail(ctx, start, "UpdateItemQuantity", sales.ErrValidation)
		return
	}

	if err := h.salesService.UpdateItemQuantity(itemID, req.Quantity); err != nil {
		h.fail(ctx, start, "UpdateItemQuantity", err)
		return
	}
	h.ok(ctx, start, http.StatusOK, "quantity updated", nil)
}

// handleCancelSale handles PUT /sales/:id/cancel.
func (h *salesHandler) handleCancelSale(ctx *gin.Context) {
	start := time.Now()
	saleID := ctx.Param("id")

	if err := h.salesService.CancelSale(saleID); err != nil {
		h.fail(ctx, start, "CancelSale", err)
		return
	}
	h.ok(ctx, start, http.StatusOK, "sale canceled", nil)
}

// handleGetSale handles GET /sales/:id.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	start := time.Now()
	saleID := ctx.Param("id")

	sale, err := h.salesService.GetSaleByID(saleID)
	if err != nil {
		h.fail(ctx, start, "GetSaleById", err)
		return
	}
	h.ok(ctx, start, http.StatusOK, "sale found", sale)
}

// handleGetSalesByProduct handles GET /sales/product/:productId.
func (h *salesHandler) handleGetSalesByProduct(ctx *gin.Context) {
	start := time.Now()
	productID := ctx.Param("productId")

	result, err := h.salesService.GetSalesByProduct(productID)
	if err != nil {
		h.fail(ctx, start, "GetSalesByProduct", err)
		return
	}
	h.ok(ctx, start, http.StatusOK, "sales found", result)
}

// handleGetSalesByStatus handles GET /sales/status/:status.
func (h *salesHandler) handleGetSalesByStatus(ctx *gin.Context) {
	start := time.Now()

	status, err := sales.ParseStatus(ctx.Param("status"))
	if err != nil {
		h.fail(ctx, start, "GetSalesByStatus", err)
		return
	}

	result, err := h.salesService.GetSalesByStatus(status)
	if err != nil {
		h.fail(ctx, start, "GetSalesByStatus", err)
		return
	}
	h.ok(ctx, start, http.StatusOK, "sales found", result)
}
