package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"portfolio-tracker/database"
	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
)

type PortfolioService struct {
	store database.Store
	log   *slog.Logger
}

func NewPortfolioService(store database.Store, log *slog.Logger) *PortfolioService {
	return &PortfolioService{store: store, log: log}
}

func (s *PortfolioService) ListByUser(ctx context.Context, userID uint) ([]models.Portfolio, error) {
	return s.store.ListPortfolios(ctx, userID)
}

func (s *PortfolioService) Get(ctx context.Context, id uint) (models.Portfolio, error) {
	return s.store.GetPortfolio(ctx, id)
}

func validPortfolio(name, description string) (string, string, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 3 || n > 100 {
		return "", "", invalid("name must be between 3 and 100 characters")
	}
	description = strings.TrimSpace(description)
	if len([]rune(description)) > 500 {
		return "", "", invalid("description must be at most 500 characters")
	}
	return name, description, nil
}

func (s *PortfolioService) Create(ctx context.Context, req models.CreatePortfolioRequest) (models.Portfolio, error) {
	name, description, err := validPortfolio(req.Name, req.Description)
	if err != nil {
		return models.Portfolio{}, err
	}
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Portfolio{}, invalid("user with ID %d not found", req.UserID)
		}
		return models.Portfolio{}, err
	}

	p := models.Portfolio{UserID: req.UserID, Name: name, Description: description}
	if err := s.store.CreatePortfolio(ctx, &p); err != nil {
		return models.Portfolio{}, err
	}
	s.log.Info("portfolio created", "portfolio_id", p.ID, "user_id", p.UserID)
	return p, nil
}

func (s *PortfolioService) Update(ctx context.Context, id uint, req models.UpdatePortfolioRequest) (models.Portfolio, error) {
	name, description, err := validPortfolio(req.Name, req.Description)
	if err != nil {
		return models.Portfolio{}, err
	}
	p := models.Portfolio{Name: name, Description: description}
	p.ID = id
	if err := s.store.UpdatePortfolio(ctx, &p); err != nil {
		return models.Portfolio{}, err
	}
	return s.store.GetPortfolio(ctx, id)
}

func (s *PortfolioService) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeletePortfolio(ctx, id); err != nil {
		return err
	}
	s.log.Info("portfolio deleted", "portfolio_id", id)
	return nil
}

// Summary values the portfolio's holdings at their current prices.
func (s *PortfolioService) Summary(ctx context.Context, id uint) (models.PortfolioSummaryResponse, error) {
	p, err := s.store.GetPortfolio(ctx, id)
	if err != nil {
		return models.PortfolioSummaryResponse{}, err
	}

	out := models.PortfolioSummaryResponse{
		PortfolioID:   p.ID,
		PortfolioName: p.Name,
		TotalHoldings: len(p.Holdings),
		Holdings:      make([]models.HoldingSummary, 0, len(p.Holdings)),
	}
	totalValue, totalCost := decimal.Zero, decimal.Zero
	for _, h := range p.Holdings {
		out.Holdings = append(out.Holdings, models.HoldingSummary{
			Symbol:             h.Symbol,
			Quantity:           h.Quantity,
			AverageCost:        h.AverageCost,
			CurrentPrice:       h.CurrentPrice,
			CurrentValue:       h.CurrentValue(),
			GainLoss:           h.GainLoss(),
			GainLossPercentage: h.GainLossPercentage(),
		})
		totalValue = totalValue.Add(h.CurrentValue())
		totalCost = totalCost.Add(h.TotalCost())
	}
	out.TotalValue = totalValue
	out.TotalCost = totalCost
	out.TotalGainLoss = totalValue.Sub(totalCost)
	out.TotalGainLossPercentage = models.Percent(out.TotalGainLoss, totalCost)
	return out, nil
}
