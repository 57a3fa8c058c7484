// Package ledger folds a symbol's Buy/Sell transactions into a holding.
//
// A holding is a projection of the ledger: it can be advanced one transaction
// at a time (ApplyBuy, ApplySell) or rebuilt from the full history (Replay).
// Both paths share the same fold step, so they agree on quantity and average
// cost for any history without deletions. The reducers perform no I/O and
// never mutate the holding they are given.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoPosition is returned when selling a symbol that is not held.
	ErrNoPosition = errors.New("ledger: no position held")
	// ErrDataIntegrity marks a stored history that sells more than it bought.
	ErrDataIntegrity = errors.New("ledger: data integrity violation")
)

// InsufficientQuantityError is returned when a sell exceeds the held quantity.
type InsufficientQuantityError struct {
	Symbol    string
	Held      decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient shares of %s: have %s, trying to sell %s",
		e.Symbol, e.Held.String(), e.Requested.String())
}

// position is the running state of the fold.
type position struct {
	quantity    decimal.Decimal
	totalCost   decimal.Decimal
	averageCost decimal.Decimal
	lastPrice   decimal.Decimal
}

func fromHolding(h *models.Holding) position {
	if h == nil {
		return position{}
	}
	return position{
		quantity:    h.Quantity,
		totalCost:   h.Quantity.Mul(h.AverageCost),
		averageCost: h.AverageCost,
		lastPrice:   h.CurrentPrice,
	}
}

// step applies one trade. Sells are checked before anything changes.
func (p *position) step(symbol string, tx models.Transaction) error {
	switch tx.Type {
	case models.TransactionBuy:
		p.buy(tx)
	case models.TransactionSell:
		return p.sell(symbol, tx)
	}
	return nil
}

func (p *position) buy(tx models.Transaction) {
	p.totalCost = p.totalCost.Add(tx.Quantity.Mul(tx.Price))
	p.quantity = p.quantity.Add(tx.Quantity)
	p.averageCost = p.totalCost.Div(p.quantity)
	p.lastPrice = tx.Price
}

func (p *position) sell(symbol string, tx models.Transaction) error {
	if p.quantity.LessThan(tx.Quantity) {
		return &InsufficientQuantityError{Symbol: symbol, Held: p.quantity, Requested: tx.Quantity}
	}
	// Selling leaves the cost basis of the remaining units untouched.
	p.totalCost = p.totalCost.Sub(tx.Quantity.Mul(p.averageCost))
	p.quantity = p.quantity.Sub(tx.Quantity)
	if p.quantity.IsZero() {
		p.totalCost = decimal.Zero
	}
	return nil
}

// fold runs the symbol's trades through step, skipping everything else.
func fold(symbol string, txs []models.Transaction) (position, models.Transaction, error) {
	var p position
	for _, tx := range txs {
		if !tx.Type.IsTrade() || tx.Symbol != symbol {
			continue
		}
		if err := p.step(symbol, tx); err != nil {
			return p, tx, err
		}
	}
	return p, models.Transaction{}, nil
}

func (p position) holding(portfolioID uint, symbol string, now time.Time) *models.Holding {
	if !p.quantity.IsPositive() {
		return nil
	}
	return &models.Holding{
		PortfolioID:  portfolioID,
		Symbol:       symbol,
		Quantity:     p.quantity,
		AverageCost:  p.totalCost.Div(p.quantity),
		CurrentPrice: p.lastPrice,
		LastUpdated:  now,
	}
}

// ApplyBuy returns the holding after buying tx on top of h. A nil h opens a
// new position priced at the purchase price.
func ApplyBuy(h *models.Holding, tx models.Transaction, now time.Time) *models.Holding {
	p := fromHolding(h)
	p.buy(tx)

	var next models.Holding
	if h == nil {
		next = models.Holding{
			Symbol:       tx.Symbol,
			CurrentPrice: tx.Price,
		}
	} else {
		next = *h
	}
	next.Quantity = p.quantity
	next.AverageCost = p.averageCost
	next.LastUpdated = now
	return &next
}

// ApplySell returns the holding after selling tx out of h, or nil when the
// sale closes the position.
func ApplySell(h *models.Holding, tx models.Transaction, now time.Time) (*models.Holding, error) {
	if h == nil {
		return nil, fmt.Errorf("cannot sell %s: %w", tx.Symbol, ErrNoPosition)
	}
	p := fromHolding(h)
	if err := p.sell(h.Symbol, tx); err != nil {
		return nil, err
	}
	if !p.quantity.IsPositive() {
		return nil, nil
	}

	next := *h
	next.Quantity = p.quantity
	next.LastUpdated = now
	return &next, nil
}

// Apply dispatches a trade to ApplyBuy or ApplySell. Non-trade transactions
// leave h as it is.
func Apply(h *models.Holding, tx models.Transaction, now time.Time) (*models.Holding, error) {
	switch tx.Type {
	case models.TransactionBuy:
		return ApplyBuy(h, tx, now), nil
	case models.TransactionSell:
		return ApplySell(h, tx, now)
	default:
		return h, nil
	}
}

// Replay rebuilds the holding of symbol in portfolioID from its full history.
// txs must already be in replay order (see SortForReplay); rows for other
// symbols and cash movements are skipped. It returns nil when nothing is held.
func Replay(portfolioID uint, symbol string, txs []models.Transaction, now time.Time) (*models.Holding, error) {
	p, failed, err := fold(symbol, txs)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %d sells more %s than owned: %v",
			ErrDataIntegrity, failed.ID, symbol, err)
	}
	return p.holding(portfolioID, symbol, now), nil
}

// Insert rebuilds the holding of symbol with tx placed into history by date.
// history must be in replay order; tx goes after every entry dated at or
// before it. When tx leaves some sell uncovered at its date, Insert returns
// that sell's *InsufficientQuantityError.
func Insert(portfolioID uint, symbol string, history []models.Transaction, tx models.Transaction, now time.Time) (*models.Holding, error) {
	i := sort.Search(len(history), func(i int) bool {
		return history[i].TransactionDate.After(tx.TransactionDate)
	})
	txs := make([]models.Transaction, 0, len(history)+1)
	txs = append(txs, history[:i]...)
	txs = append(txs, tx)
	txs = append(txs, history[i:]...)

	p, _, err := fold(symbol, txs)
	if err != nil {
		return nil, err
	}
	return p.holding(portfolioID, symbol, now), nil
}

// SortForReplay orders txs by date, oldest first; transactions sharing a
// timestamp keep insertion (ID) order.
func SortForReplay(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].TransactionDate.Equal(txs[j].TransactionDate) {
			return txs[i].TransactionDate.Before(txs[j].TransactionDate)
		}
		return txs[i].ID < txs[j].ID
	})
}
