/*

This file contains the Wad type, the 18-decimal scaled integer used for every monetary
quantity in the simulation (balances, debt, interest, prices and rates).

A Wad holds value * 10^18 as an integer. Multiplication and division rescale with
truncating integer division, the same way the on-chain contracts do it.

*/

package types

import (
	"errors"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// WadDecimals is the number of decimals carried by a Wad.
const WadDecimals = 18

var (
	ErrDivisionByZero = errors.New("wad division by zero")

	wadScale    = sdkmath.NewIntWithDecimal(1, WadDecimals)
	wadScaleBig = wadScale.BigInt()
)

// Wad is an immutable 18-decimal fixed-point number. The zero value is zero.
type Wad struct {
	i sdkmath.Int
}

// NewWad wraps an already scaled integer.
func NewWad(i sdkmath.Int) Wad {
	return Wad{i: i}
}

// WadFromBigInt wraps an already scaled big.Int (e.g. a token balance read from chain).
// A nil input yields zero.
func WadFromBigInt(b *big.Int) Wad {
	if b == nil {
		return ZeroWad()
	}
	return Wad{i: sdkmath.NewIntFromBigInt(b)}
}

// WadFromUnits scales a whole number of units, e.g. 10000 DAI -> 10000 * 10^18.
func WadFromUnits(units int64) Wad {
	return Wad{i: sdkmath.NewInt(units).Mul(wadScale)}
}

// ZeroWad returns 0.
func ZeroWad() Wad {
	return Wad{i: sdkmath.ZeroInt()}
}

// OneWad returns 1.0, i.e. 10^18.
func OneWad() Wad {
	return Wad{i: wadScale}
}

func (w Wad) raw() sdkmath.Int {
	if w.i.IsNil() {
		return sdkmath.ZeroInt()
	}
	return w.i
}

// Int returns the raw scaled integer.
func (w Wad) Int() sdkmath.Int {
	return w.raw()
}

// BigInt returns a copy of the raw scaled integer.
func (w Wad) BigInt() *big.Int {
	return w.raw().BigInt()
}

func (w Wad) Add(o Wad) Wad {
	return Wad{i: w.raw().Add(o.raw())}
}

func (w Wad) Sub(o Wad) Wad {
	return Wad{i: w.raw().Sub(o.raw())}
}

func (w Wad) IsZero() bool     { return w.raw().IsZero() }
func (w Wad) IsNegative() bool { return w.raw().IsNegative() }
func (w Wad) IsPositive() bool { return w.raw().IsPositive() }

func (w Wad) Equal(o Wad) bool { return w.raw().Equal(o.raw()) }
func (w Wad) GT(o Wad) bool    { return w.raw().GT(o.raw()) }
func (w Wad) LT(o Wad) bool    { return w.raw().LT(o.raw()) }

// String prints the raw scaled integer. Use utils.WadToString for a decimal rendering.
func (w Wad) String() string {
	return w.raw().String()
}

// WMul returns a*b / 10^18, truncated toward zero. The product is formed in big.Int,
// so only a result beyond the 256-bit range of sdkmath.Int panics.
func WMul(a, b Wad) Wad {
	p := new(big.Int).Mul(a.raw().BigInt(), b.raw().BigInt())
	return Wad{i: sdkmath.NewIntFromBigInt(p.Quo(p, wadScaleBig))}
}

// WDiv returns a*10^18 / b, truncated toward zero.
func WDiv(a, b Wad) (Wad, error) {
	if b.IsZero() {
		return ZeroWad(), ErrDivisionByZero
	}
	p := new(big.Int).Mul(a.raw().BigInt(), wadScaleBig)
	return Wad{i: sdkmath.NewIntFromBigInt(p.Quo(p, b.raw().BigInt()))}, nil
}
