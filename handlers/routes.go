package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Register mounts the API under /api and a health check at /healthz.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	users := api.Group("/users")
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.POST("", h.CreateUser)
	users.DELETE("/:id", h.DeleteUser)

	portfolios := api.Group("/portfolios")
	portfolios.GET("/user/:userId", h.ListUserPortfolios)
	portfolios.GET("/:id", h.GetPortfolio)
	portfolios.GET("/:id/summary", h.GetPortfolioSummary)
	portfolios.POST("", h.CreatePortfolio)
	portfolios.PUT("/:id", h.UpdatePortfolio)
	portfolios.DELETE("/:id", h.DeletePortfolio)

	accounts := api.Group("/accounts")
	accounts.GET("/portfolio/:portfolioId", h.ListPortfolioAccounts)
	accounts.GET("/:id", h.GetAccount)
	accounts.POST("", h.CreateAccount)
	accounts.DELETE("/:id", h.DeleteAccount)

	transactions := api.Group("/transactions")
	transactions.GET("/account/:accountId", h.ListAccountTransactions)
	transactions.GET("/portfolio/:portfolioId", h.ListPortfolioTransactions)
	transactions.GET("/:id", h.GetTransaction)
	transactions.POST("", h.CreateTransaction)
	transactions.DELETE("/:id", h.DeleteTransaction)

	analytics := api.Group("/analytics")
	analytics.GET("/portfolio/:portfolioId", h.GetPortfolioAnalytics)
	analytics.GET("/portfolio/:portfolioId/history", h.GetTransactionHistory)

	priceUpdate := api.Group("/priceupdate")
	priceUpdate.PUT("/holding/:holdingId", h.UpdateHoldingPrice)
	priceUpdate.PUT("/portfolio/:portfolioId", h.UpdatePortfolioPrices)
	priceUpdate.POST("/portfolio/:portfolioId/refresh", h.RefreshPortfolioPrices)
	priceUpdate.POST("/fetch", h.FetchPrices)

	prices := api.Group("/prices")
	prices.GET("/:symbol", h.GetStockPrice)
	prices.GET("/:symbol/history", h.GetHistoricalData)
}
