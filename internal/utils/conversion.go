/*
This file contains common utility functions for converting Wads to and from
human-readable decimals without going through floating point on the way in.
*/

package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/mihai6/FiatSim/internal/types"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDecimal = errors.New("invalid decimal string")
	ErrNotFinite      = errors.New("value is not finite")
)

// ParseWad converts a decimal string such as "0.0004965" into a Wad.
// At most 18 fractional digits are accepted.
func ParseWad(s string) (types.Wad, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.ZeroWad(), fmt.Errorf("%w: empty", ErrInvalidDecimal)
	}
	dec, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil {
		return types.ZeroWad(), fmt.Errorf("%w: %q: %w", ErrInvalidDecimal, s, err)
	}
	// LegacyDec carries exactly 18 decimals, so its internal integer is already a Wad.
	return types.WadFromBigInt(dec.BigInt()), nil
}

// MustParseWad is ParseWad for package-level constants. It panics on bad input.
func MustParseWad(s string) types.Wad {
	w, err := ParseWad(s)
	if err != nil {
		panic(err)
	}
	return w
}

// WadToDecimal renders a Wad as an exact decimal.
func WadToDecimal(w types.Wad) decimal.Decimal {
	return decimal.NewFromBigInt(w.BigInt(), -types.WadDecimals)
}

// WadToFloat64 converts a Wad to float64 for reporting. Precision beyond float64 is lost.
func WadToFloat64(w types.Wad) (float64, error) {
	f, _ := WadToDecimal(w).Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNotFinite, w.String())
	}
	return f, nil
}

// WadToString renders a Wad with all 18 decimals, e.g. "1.500000000000000000".
func WadToString(w types.Wad) string {
	return WadToDecimal(w).StringFixed(types.WadDecimals)
}
