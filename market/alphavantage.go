package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
)

type alphaVantageResponse struct {
	GlobalQuote struct {
		Price string `json:"05. price"`
	} `json:"Global Quote"`
	TimeSeriesDaily map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// AlphaVantage queries the Alpha Vantage GLOBAL_QUOTE and TIME_SERIES_DAILY
// endpoints.
type AlphaVantage struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewAlphaVantage(baseURL, apiKey string, timeout time.Duration) *AlphaVantage {
	return &AlphaVantage{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *AlphaVantage) query(ctx context.Context, function, symbol string) (*alphaVantageResponse, error) {
	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	q.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, function, resp.StatusCode)
	}

	var result alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", function, err)
	}
	// Rate limiting is reported in a 200 body.
	if result.Note != "" || result.Information != "" {
		return nil, fmt.Errorf("%w: %s%s", ErrUnavailable, result.Note, result.Information)
	}
	if result.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return &result, nil
}

func (a *AlphaVantage) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	result, err := a.query(ctx, "GLOBAL_QUOTE", symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if result.GlobalQuote.Price == "" {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	price, err := decimal.NewFromString(result.GlobalQuote.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price of %s: %w", symbol, err)
	}
	return price, nil
}

// Daily returns closing prices, oldest first.
func (a *AlphaVantage) Daily(ctx context.Context, symbol string) ([]models.StockPrice, error) {
	result, err := a.query(ctx, "TIME_SERIES_DAILY", symbol)
	if err != nil {
		return nil, err
	}
	if len(result.TimeSeriesDaily) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	prices := make([]models.StockPrice, 0, len(result.TimeSeriesDaily))
	for date, bar := range result.TimeSeriesDaily {
		ts, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q of %s: %w", date, symbol, err)
		}
		closePrice, err := decimal.NewFromString(bar.Close)
		if err != nil {
			return nil, fmt.Errorf("parse close of %s on %s: %w", symbol, date, err)
		}
		prices = append(prices, models.StockPrice{Symbol: symbol, Price: closePrice, Timestamp: ts})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].Timestamp.Before(prices[j].Timestamp) })
	return prices, nil
}

var _ Provider = (*AlphaVantage)(nil)
