package handlers

import (
	"fmt"
	"net/http"
	"time"

	"portfolio-tracker/models"

	"github.com/gin-gonic/gin"
)

const dateOnly = "2006-01-02"

// parseDate accepts RFC 3339 timestamps and plain dates. A plain end date
// covers the whole day.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (h *Handler) GetPortfolioAnalytics(c *gin.Context) {
	portfolioID, ok := idParam(c, "portfolioId")
	if !ok {
		return
	}
	report, err := h.svc.Analytics.Portfolio(c.Request.Context(), portfolioID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetTransactionHistory(c *gin.Context) {
	portfolioID, ok := idParam(c, "portfolioId")
	if !ok {
		return
	}

	var filter models.TransactionFilter
	var err error
	if filter.Start, err = parseDate(c.Query("startDate"), false); err != nil {
		badRequest(c, err)
		return
	}
	if filter.End, err = parseDate(c.Query("endDate"), true); err != nil {
		badRequest(c, err)
		return
	}
	if s := c.Query("transactionType"); s != "" {
		if filter.Type, err = models.ParseTransactionType(s); err != nil {
			badRequest(c, err)
			return
		}
	}

	history, err := h.svc.Analytics.History(c.Request.Context(), portfolioID, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
