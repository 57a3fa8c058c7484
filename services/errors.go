// Package services implements the portfolio operations served by the HTTP
// handlers: ledger writes through the position reducer, derived views and
// price updates.
package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports a request the caller has to correct.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Quantities and prices are stored as numeric(20,8).
const amountScale = 8

var amountLimit = decimal.New(1, 20-amountScale)

// checkAmount rejects values that are not positive or that the amount columns
// cannot hold exactly.
func checkAmount(name string, v decimal.Decimal) error {
	switch {
	case !v.IsPositive():
		return invalid("%s must be greater than 0", name)
	case !v.Equal(v.Truncate(amountScale)):
		return invalid("%s must have at most %d decimal places", name, amountScale)
	case v.GreaterThanOrEqual(amountLimit):
		return invalid("%s must be less than %s", name, amountLimit.String())
	}
	return nil
}
