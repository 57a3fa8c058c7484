package handlers

import (
	"net/http"
	"strings"

	"portfolio-tracker/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) UpdateHoldingPrice(c *gin.Context) {
	holdingID, ok := idParam(c, "holdingId")
	if !ok {
		return
	}
	var req models.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	holding, err := h.svc.Prices.UpdateHolding(c.Request.Context(), holdingID, req.NewPrice)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewHoldingResponse(holding))
}

func (h *Handler) UpdatePortfolioPrices(c *gin.Context) {
	portfolioID, ok := idParam(c, "portfolioId")
	if !ok {
		return
	}
	var req models.UpdatePortfolioPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.svc.Prices.UpdatePortfolio(c.Request.Context(), portfolioID, req.SymbolPrices)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PriceUpdateResponse{UpdatedCount: n})
}

func (h *Handler) RefreshPortfolioPrices(c *gin.Context) {
	portfolioID, ok := idParam(c, "portfolioId")
	if !ok {
		return
	}
	prices, n, err := h.svc.Prices.RefreshPortfolio(c.Request.Context(), portfolioID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PriceUpdateResponse{UpdatedCount: n, Prices: prices})
}

func (h *Handler) FetchPrices(c *gin.Context) {
	var req models.FetchPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	prices, err := h.svc.Prices.Fetch(c.Request.Context(), req.Symbols)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (h *Handler) GetStockPrice(c *gin.Context) {
	price, err := h.svc.Prices.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.QuoteResponse{Symbol: normalize(c.Param("symbol")), Price: price})
}

func (h *Handler) GetHistoricalData(c *gin.Context) {
	prices, err := h.svc.Prices.History(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPricePoints(prices))
}
