package api

import (
	"net/http"

	"cart_service/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InitRoutes registers all sales endpoints on the given Gin engine.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger) {
	h := NewSalesHandler(salesService, logger)

	e.POST("/sales", h.handleCreateSale)
	e.POST("/sales/:id/items", h.handleAddItem)
	e.PUT("/sales/items/:id", h.handleUpdateItemQuantity)
	e.PUT("/sales/:id/cancel", h.handleCancelSale)
	e.GET("/sales/:id", h.handleGetSale)
	e.GET("/sales/product/:productId", h.handleGetSalesByProduct)
	e.GET("/sales/status/:status", h.handleGetSalesByStatus)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
