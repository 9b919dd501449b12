package api

import (
	"net/http"

	"api_fiado/internal/sales"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InitRoutes registers the ledger endpoints on the given Gin engine. Only
// origins listed in allowedOrigins may call it from a browser; "*" allows
// any.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger, allowedOrigins []string) {
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AddExposeHeaders(requestIDHeader)

	e.Use(requestLogger(logger), cors.New(corsConfig))

	salesHandler := NewSalesHandler(salesService, logger)

	e.GET("/sales", salesHandler.handleListSales)
	e.POST("/sales", salesHandler.handleCreateSale)
	e.GET("/sales/:id", salesHandler.handleGetSale)
	e.PATCH("/sales/:id", salesHandler.handlePatchSale)
	e.DELETE("/sales/:id", salesHandler.handleDeleteSale)
	e.POST("/sales/:id/payments", salesHandler.handleCreatePayment)

	e.GET("/payments", salesHandler.handleListPayments)
	e.DELETE("/payments/:id", salesHandler.handleDeletePayment)

	e.GET("/customers", salesHandler.handleCustomers)
	e.GET("/customers/:name/sales", salesHandler.handleCustomerSales)

	e.GET("/report", salesHandler.handleReport)
	e.GET("/report/orphans", salesHandler.handleOrphans)
	e.GET("/report/export", salesHandler.handleExport)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
