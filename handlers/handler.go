// Package handlers serves the portfolio API over gin.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"portfolio-tracker/cache"
	"portfolio-tracker/database"
	"portfolio-tracker/ledger"
	"portfolio-tracker/market"
	"portfolio-tracker/middleware"
	"portfolio-tracker/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *services.Services
	log *slog.Logger
}

func New(svc *services.Services, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// statusOf maps service errors onto HTTP statuses.
func statusOf(err error) int {
	var (
		verr         *services.ValidationError
		insufficient *ledger.InsufficientQuantityError
	)
	switch {
	case errors.As(err, &verr),
		errors.As(err, &insufficient),
		errors.Is(err, ledger.ErrNoPosition):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, market.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, cache.ErrLockTimeout),
		errors.Is(err, market.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.FullPath(), "request_id", middleware.GetRequestID(c), "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// idParam parses a positive numeric path parameter; on failure it answers
// 400 and returns false.
func idParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(n), true
}
