package handlers

import (
	"net/http"

	"portfolio-tracker/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListPortfolioAccounts(c *gin.Context) {
	portfolioID, ok := idParam(c, "portfolioId")
	if !ok {
		return
	}
	accounts, err := h.svc.Accounts.ListByPortfolio(c.Request.Context(), portfolioID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]models.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, models.NewAccountResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetAccount(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewAccountResponse(a))
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.svc.Accounts.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewAccountResponse(a))
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Accounts.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
