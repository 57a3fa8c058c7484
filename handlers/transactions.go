package handlers

import (
	"net/http"

	"portfolio-tracker/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAccountTransactions(c *gin.Context) {
	accountID, ok := idParam(c, "accountId")
	if !ok {
		return
	}
	txs, err := h.svc.Transactions.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewTransactionResponses(txs))
}

func (h *Handler) ListPortfolioTransactions(c *gin.Context) {
	portfolioID, ok := idParam(c, "portfolioId")
	if !ok {
		return
	}
	txs, err := h.svc.Transactions.ListByPortfolio(c.Request.Context(), portfolioID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewTransactionResponses(txs))
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tx, err := h.svc.Transactions.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewTransactionResponse(tx))
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tx, err := h.svc.Transactions.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewTransactionResponse(tx))
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Transactions.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
