// Package units converts token amounts between the display denomination a
// user types and the smallest on-chain unit, using exact decimal arithmetic.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Errors.
var (
	ErrNotNumeric  = errors.New("amount is not a number")
	ErrNotPositive = errors.New("amount must be greater than zero")
	ErrTooPrecise  = errors.New("amount has more decimal places than the token supports")
	ErrOutOfRange  = errors.New("amount does not fit in uint256")
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// maxExponent is the largest power of ten below 2^256.
const maxExponent = 77

// ToSmallest scales a display amount such as "2.5" by 10^decimals.
// The result is exact: amounts that would need rounding are rejected.
func ToSmallest(display string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(display)
	if s == "" {
		return nil, ErrNotNumeric
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, display)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotPositive, display)
	}
	// Scientific notation can carry any exponent. Reject the ones no uint256
	// could hold before scaling tries to materialize them.
	if d.Exponent() > maxExponent {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, display)
	}
	if d.Exponent() < -(int32(decimals) + int32(len(s))) {
		return nil, fmt.Errorf("%w: %s (max %d)", ErrTooPrecise, display, decimals)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s (max %d)", ErrTooPrecise, display, decimals)
	}

	n := scaled.BigInt()
	if n.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, display)
	}
	return n, nil
}

// FromSmallest renders a raw amount in display units with trailing zeros
// trimmed: 2500000000000000000 at 18 decimals → "2.5".
func FromSmallest(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

// Fixed renders a raw amount with exactly places fractional digits,
// truncating (never rounding up) what does not fit.
func Fixed(raw *big.Int, decimals uint8, places int32) string {
	if raw == nil {
		raw = new(big.Int)
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).Truncate(places).StringFixed(places)
}
