package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shieldtip/shieldtip-backend/internal/handler"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler) {
	v1 := r.Group("/api/v1")

	transactions := v1.Group("/transactions")
	{
		transactions.POST("", h.TransactionHandler.LogTransaction)
		transactions.GET("", h.TransactionHandler.GetTransactions)
		transactions.GET("/:id", h.TransactionHandler.GetTransactionByID)
		transactions.GET("/hash/:hash", h.TransactionHandler.GetTransactionByHash)
		transactions.PUT("/:id/status", h.TransactionHandler.UpdateStatus)
	}

	creators := v1.Group("/creators")
	{
		creators.GET("/:id/stats", h.StatsHandler.GetCreatorStats)
	}

	tips := v1.Group("/tips")
	{
		tips.POST("", h.TipHandler.SendTip)
		tips.POST("/reset", h.TipHandler.ResetTip)
		tips.GET("/status", h.TipHandler.GetStatus)
	}

	wallet := v1.Group("/wallet")
	{
		wallet.POST("/connect", h.TipHandler.ConnectWallet)
		wallet.POST("/disconnect", h.TipHandler.DisconnectWallet)
	}

	v1.GET("/health/db", h.HealthHandler.Database)

	r.GET("/healthz", h.HealthHandler.Basic)
	r.GET("/metrics", h.MetricsHandler.Handler())
}
