package models

import (
	"fmt"
	"strings"
)

type TransactionType string

const (
	TransactionBuy        TransactionType = "Buy"
	TransactionSell       TransactionType = "Sell"
	TransactionDeposit    TransactionType = "Deposit"
	TransactionWithdrawal TransactionType = "Withdrawal"
)

var transactionTypes = []TransactionType{
	TransactionBuy,
	TransactionSell,
	TransactionDeposit,
	TransactionWithdrawal,
}

// ParseTransactionType accepts the canonical names case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	s = strings.TrimSpace(s)
	for _, t := range transactionTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("transaction type must be one of Buy, Sell, Deposit, Withdrawal, got %q", s)
}

func (t TransactionType) Valid() bool {
	for _, v := range transactionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsTrade reports whether the type moves a symbol position.
func (t TransactionType) IsTrade() bool {
	return t == TransactionBuy || t == TransactionSell
}

type AccountType string

const (
	AccountStocks AccountType = "Stocks"
	AccountBonds  AccountType = "Bonds"
	AccountCash   AccountType = "Cash"
	AccountCrypto AccountType = "Crypto"
)

func ParseAccountType(s string) (AccountType, error) {
	for _, t := range []AccountType{AccountStocks, AccountBonds, AccountCash, AccountCrypto} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("account type must be one of Stocks, Bonds, Cash, Crypto, got %q", s)
}
