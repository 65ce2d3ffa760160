// Package money provides fixed-precision currency arithmetic.
//
// Amounts are held as scaled integers in minor units (cents), so addition
// is exact and no floating point is involved anywhere. Fractional
// intermediate results (quantity multiplication, VAT percentages) are
// computed with shopspring decimals and rounded to the nearest minor unit
// only at the final step, half up.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a non-negative amount is required but
// a negative value was supplied.
var ErrInvalidAmount = errors.New("invalid_amount")

// Amount is a currency value in minor units (cents).
type Amount int64

// minorDigits is the number of fractional digits of the display form.
const minorDigits = 2

var oneHundred = decimal.NewFromInt(100)

// FromMajor converts a display-form decimal (e.g. 12.345) into an Amount,
// rounding to the nearest cent. Negative values are rejected with
// ErrInvalidAmount: every construction site in the domain (unit prices,
// computed item amounts) requires a non-negative value.
func FromMajor(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	return Amount(d.Shift(minorDigits).Round(0).IntPart()), nil
}

// FromMajorString is FromMajor on a decimal literal such as "100.00".
func FromMajorString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromMajor(d)
}

// MustFromMajor is FromMajorString that panics on error. Intended for
// constants and test fixtures.
func MustFromMajor(s string) Amount {
	a, err := FromMajorString(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ToMajor returns the display form with exactly two fractional digits.
func (a Amount) ToMajor() decimal.Decimal {
	return decimal.New(int64(a), -minorDigits)
}

// String renders the display form, e.g. "360.00".
func (a Amount) String() string {
	return a.ToMajor().StringFixed(minorDigits)
}

// Add returns a + b. Minor-unit addition is exact.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// MulQuantity returns a × q rounded to the nearest minor unit.
func (a Amount) MulQuantity(q decimal.Decimal) Amount {
	return roundMinor(decimal.NewFromInt(int64(a)).Mul(q))
}

// PercentOf returns a × rate/100 rounded to the nearest minor unit, where
// rate is a percentage such as 20 or 5.5.
func (a Amount) PercentOf(rate decimal.Decimal) Amount {
	return roundMinor(decimal.NewFromInt(int64(a)).Mul(rate).Div(oneHundred))
}

// roundMinor rounds a minor-unit decimal to an integral Amount, half up.
// All domain amounts are non-negative, so decimal's round-half-away-from-
// zero coincides with round-half-up here.
func roundMinor(d decimal.Decimal) Amount {
	return Amount(d.Round(0).IntPart())
}
