package ast

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is wrapped by every error returned from ParsePrice.
var ErrInvalidPrice = errors.New("invalid price")

// Price is a fixed-point money value stored as signed minor units, where one
// minor unit is 0.01. Arithmetic is plain integer arithmetic on the minor units,
// so a Price never suffers from floating point rounding.
//
// Example literals accepted by ParsePrice:
//
//	20      -> 2000
//	20.5    -> 2050
//	20.05   -> 2005
//	20.     -> 2000
type Price int64

// maxWhole is the largest integer part that still fits into minor units.
const maxWhole = math.MaxInt64 / 100

// NewPrice builds a Price from its integer and fractional parts. The fractional
// part must already be expressed in hundredths and carries no sign; the sign of
// whole decides the sign of the result.
func NewPrice(whole int64, fraction int64) Price {
	if whole < 0 {
		return Price(whole*100 - fraction)
	}
	return Price(whole*100 + fraction)
}

// ParsePrice parses a decimal literal into a Price.
//
// The integer part is mandatory and parsed with strconv, so an empty or
// non-numeric integer part is an error. The fractional part is optional: when
// it is absent or empty the price has no fraction, a single digit is scaled by
// ten and two digits are taken as-is. Longer fractions and extra dots are errors.
func ParsePrice(s string) (Price, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: unexpected part after fractional part in %q", ErrInvalidPrice, s)
	}

	whole, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: integer part of %q: %w", ErrInvalidPrice, s, err)
	}
	if whole > maxWhole || whole < -maxWhole {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidPrice, s)
	}

	if len(parts) == 1 {
		return NewPrice(whole, 0), nil
	}

	frac := parts[1]
	var fraction uint64
	switch len(frac) {
	case 0:
		// "20." reads as "20"
	case 1, 2:
		fraction, err = strconv.ParseUint(frac, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: fractional part of %q: %w", ErrInvalidPrice, s, err)
		}
		if len(frac) == 1 {
			fraction *= 10
		}
	default:
		return 0, fmt.Errorf("%w: fractional part must be less than 100, but current is %q", ErrInvalidPrice, frac)
	}

	if strings.HasPrefix(parts[0], "-") {
		// keeps the sign of "-0.50"
		return -Price(-whole*100 + int64(fraction)), nil
	}
	return NewPrice(whole, int64(fraction)), nil
}

// MustParsePrice is like ParsePrice but panics on error.
// Use only in tests or for literals known to be valid.
func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Raw returns the price in minor units.
func (p Price) Raw() int64 {
	return int64(p)
}

// IntegerPart returns the whole units, truncated towards zero.
func (p Price) IntegerPart() int64 {
	return int64(p) / 100
}

// FractionalPart returns the magnitude of the hundredths.
func (p Price) FractionalPart() int64 {
	f := int64(p) % 100
	if f < 0 {
		return -f
	}
	return f
}

// Sub returns p - q.
func (p Price) Sub(q Price) Price {
	return p - q
}

// IsZero reports whether the price is 0.00.
func (p Price) IsZero() bool {
	return p == 0
}

// Decimal converts the price into a decimal with two fractional digits.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -2)
}

// String renders the price as "<integer>.<fraction:02>".
//
// Only the integer part carries a sign, so magnitudes under one whole unit
// render without their minus sign: Price(-50) prints as "0.50".
func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", p.IntegerPart(), p.FractionalPart())
}
