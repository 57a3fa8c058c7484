package handlers

import (
	"net/http"

	"portfolio-tracker/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListUserPortfolios(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	portfolios, err := h.svc.Portfolios.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]models.PortfolioResponse, 0, len(portfolios))
	for _, p := range portfolios {
		out = append(out, models.NewPortfolioResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Portfolios.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPortfolioResponse(p))
}

func (h *Handler) GetPortfolioSummary(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	summary, err := h.svc.Portfolios.Summary(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) CreatePortfolio(c *gin.Context) {
	var req models.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Portfolios.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewPortfolioResponse(p))
}

func (h *Handler) UpdatePortfolio(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Portfolios.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPortfolioResponse(p))
}

func (h *Handler) DeletePortfolio(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Portfolios.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
