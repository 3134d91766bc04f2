package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api/v1")
	{
		api.POST("/holdings", handler.UploadHoldings)
		api.DELETE("/holdings", handler.ClearHoldings)
		api.GET("/holdings/export", handler.ExportHoldings)
		api.GET("/holdings/enriched", handler.ListEnrichedHoldings)
		api.GET("/holdings/consolidated", handler.ListConsolidatedHoldings)
		api.GET("/holdings/consolidated/:code", handler.GetConsolidatedHolding)

		api.GET("/dashboard", handler.GetDashboard)
		api.POST("/dashboard/refresh", handler.RefreshDashboard)

		api.GET("/accounts", handler.ListAccounts)
		api.GET("/sectors", handler.ListSectors)
		api.GET("/summary", handler.GetSummary)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
