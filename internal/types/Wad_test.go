package types

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wadFromString(t *testing.T, s string) Wad {
	t.Helper()
	b, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, s)
	return WadFromBigInt(b)
}

func TestWadZeroValue(t *testing.T) {
	var w Wad
	assert.True(t, w.IsZero())
	assert.Equal(t, "0", w.String())
	assert.True(t, w.Add(OneWad()).Equal(OneWad()))
	assert.True(t, WMul(w, OneWad()).IsZero())
	assert.True(t, WadFromBigInt(nil).IsZero())
}

func TestWadFromUnits(t *testing.T) {
	assert.Equal(t, "10000000000000000000000", WadFromUnits(10000).String())
	assert.Equal(t, "-2000000000000000000", WadFromUnits(-2).String())
}

func TestWMul(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"one times one", "1000000000000000000", "1000000000000000000", "1000000000000000000"},
		{"1.5 times 2", "1500000000000000000", "2000000000000000000", "3000000000000000000"},
		{"truncates sub-unit product", "1", "1", "0"},
		{"truncates", "3", "333333333333333333", "0"},
		{"negative truncates toward zero", "-1500000000000000000", "1", "-1"},
		{"zero", "0", "123456789", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WMul(wadFromString(t, tc.a), wadFromString(t, tc.b))
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestWDiv(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"one over three", "1000000000000000000", "3000000000000000000", "333333333333333333"},
		{"3 over 1.5", "3000000000000000000", "1500000000000000000", "2000000000000000000"},
		{"negative truncates toward zero", "-1000000000000000000", "3000000000000000000", "-333333333333333333"},
		{"inverse of eth price", "1000000000000000000", "496500000000000", "2014098690835850956696"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := WDiv(wadFromString(t, tc.a), wadFromString(t, tc.b))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestWDivByZero(t *testing.T) {
	_, err := WDiv(OneWad(), ZeroWad())
	assert.ErrorIs(t, err, ErrDivisionByZero)

	var zero Wad
	_, err = WDiv(OneWad(), zero)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

// WDiv(WMul(a, b), b) recovers a to within one unit whenever b >= 1.0.
func TestWMulWDivRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	aLimit := new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)
	bSpan := new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)
	one := OneWad()

	for i := 0; i < 1000; i++ {
		a := WadFromBigInt(new(big.Int).Rand(rng, aLimit))
		b := one.Add(WadFromBigInt(new(big.Int).Rand(rng, bSpan)))

		back, err := WDiv(WMul(a, b), b)
		require.NoError(t, err)

		diff := a.Sub(back)
		assert.False(t, diff.IsNegative(), "a=%s b=%s back=%s", a, b, back)
		assert.True(t, diff.LT(WadFromBigInt(big.NewInt(2))), "a=%s b=%s back=%s", a, b, back)
	}
}

// Products and scaled numerators may pass 256 bits as long as the result fits.
func TestWadWideIntermediates(t *testing.T) {
	pow2 := func(n int64) *big.Int { return new(big.Int).Lsh(big.NewInt(1), uint(n)) }
	scale := big.NewInt(1e18)

	got := WMul(WadFromBigInt(pow2(200)), WadFromBigInt(pow2(60)))
	want := new(big.Int).Quo(pow2(260), scale)
	assert.Equal(t, want.String(), got.String())

	quot, err := WDiv(WadFromBigInt(pow2(250)), WadFromBigInt(pow2(100)))
	require.NoError(t, err)
	want = new(big.Int).Quo(new(big.Int).Mul(pow2(250), scale), pow2(100))
	assert.Equal(t, want.String(), quot.String())

	neg := WMul(WadFromBigInt(new(big.Int).Neg(pow2(200))), WadFromBigInt(pow2(60)))
	assert.Equal(t, new(big.Int).Neg(new(big.Int).Quo(pow2(260), scale)).String(), neg.String())
}

func TestWadComparisons(t *testing.T) {
	one, two := OneWad(), WadFromUnits(2)
	assert.True(t, two.GT(one))
	assert.False(t, two.GT(two))
	assert.True(t, one.LT(two))
	assert.True(t, one.Sub(two).IsNegative())
	assert.True(t, one.Sub(one).IsZero())
	assert.True(t, one.IsPositive())
	assert.Equal(t, 0, one.BigInt().Cmp(big.NewInt(1e18)))
}
