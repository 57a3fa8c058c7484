package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestHoldingMetrics(t *testing.T) {
	h := Holding{Quantity: d("10"), AverageCost: d("100"), CurrentPrice: d("125.50")}

	assert.True(t, h.TotalCost().Equal(d("1000")))
	assert.True(t, h.CurrentValue().Equal(d("1255")))
	assert.True(t, h.GainLoss().Equal(d("255")))
	assert.True(t, h.GainLossPercentage().Equal(d("25.5")))
}

func TestHoldingZeroCost(t *testing.T) {
	h := Holding{Quantity: d("0"), AverageCost: d("0"), CurrentPrice: d("10")}
	assert.True(t, h.GainLossPercentage().IsZero())
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(d("25"), d("200")).Equal(d("12.5")))
	assert.True(t, Percent(d("25"), decimal.Zero).IsZero())
	assert.True(t, Percent(d("25"), d("-5")).IsZero())
}

func TestParseTransactionType(t *testing.T) {
	for in, want := range map[string]TransactionType{
		"Buy":        TransactionBuy,
		"sell":       TransactionSell,
		" DEPOSIT ":  TransactionDeposit,
		"withdrawal": TransactionWithdrawal,
	} {
		got, err := ParseTransactionType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseTransactionType("Dividend")
	assert.Error(t, err)
}

func TestTransactionTypeKinds(t *testing.T) {
	assert.True(t, TransactionBuy.IsTrade())
	assert.True(t, TransactionSell.IsTrade())
	assert.False(t, TransactionDeposit.IsTrade())
	assert.False(t, TransactionType("Split").Valid())

	assert.True(t, Transaction{Type: TransactionBuy, Symbol: "AAPL"}.AffectsHolding())
	assert.False(t, Transaction{Type: TransactionBuy}.AffectsHolding())
	assert.False(t, Transaction{Type: TransactionWithdrawal, Symbol: "AAPL"}.AffectsHolding())
}

func TestParseAccountType(t *testing.T) {
	got, err := ParseAccountType("crypto")
	require.NoError(t, err)
	assert.Equal(t, AccountCrypto, got)

	_, err = ParseAccountType("Savings")
	assert.Error(t, err)
}
