// Package amountpkg parses and validates money amounts.
package amountpkg

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	// Scale is the number of fractional digits an amount may carry.
	Scale = 4
	// Precision is the total number of digits an amount may carry.
	Precision = 20
)

// limit is the smallest value with more integer digits than an amount may carry.
var limit = decimal.New(1, Precision-Scale)

var (
	// ErrMalformed indicates that the value is not a decimal with at most Scale
	// fractional digits and Precision-Scale integer digits.
	ErrMalformed = errors.New("malformed amount")
	// ErrNotPositive indicates that the amount is zero or negative.
	ErrNotPositive = errors.New("amount is not positive")
)

// Parse converts s into a positive decimal amount.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformed
	}

	if !d.Equal(d.Round(Scale)) || d.Abs().GreaterThanOrEqual(limit) {
		return decimal.Zero, ErrMalformed
	}

	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}

	return d, nil
}

// ValidAmount validates whether the field holds a positive amount.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := Parse(s)
		return err == nil
	}

	return false
}
