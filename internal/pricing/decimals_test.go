package pricing

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/swapvault/internal/domain"
)

func u(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func TestAdjustScaling(t *testing.T) {
	tests := []struct {
		name      string
		sourceIsA bool
		decA      uint8
		decB      uint8
		in        string
		want      string
	}{
		{name: "A>B from A divides", sourceIsA: true, decA: 18, decB: 6, in: "1500000000000000000", want: "1500000"},
		{name: "A>B from B multiplies", sourceIsA: false, decA: 18, decB: 6, in: "1500000", want: "1500000000000000000"},
		{name: "A<B from A multiplies", sourceIsA: true, decA: 6, decB: 18, in: "42", want: "42000000000000"},
		{name: "A<B from B divides", sourceIsA: false, decA: 6, decB: 18, in: "42000000000000", want: "42"},
		{name: "division truncates", sourceIsA: true, decA: 8, decB: 6, in: "12399", want: "123"},
		{name: "truncates to zero", sourceIsA: true, decA: 18, decB: 6, in: "999999999999", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Adjust(tt.sourceIsA, ResolvedDecimals(tt.decA), ResolvedDecimals(tt.decB), u(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Dec())
		})
	}
}

func TestAdjustIdentityOnEqualDecimals(t *testing.T) {
	amount := u("123456789")
	for _, count := range []uint8{0, 6, 18, 255} {
		for _, sourceIsA := range []bool{true, false} {
			got, err := Adjust(sourceIsA, ResolvedDecimals(count), ResolvedDecimals(count), amount)
			require.NoError(t, err)
			assert.Equal(t, amount, got)

			got, err = Adjust(sourceIsA, Decimals{Count: count}, Decimals{Count: count}, amount)
			require.NoError(t, err, "identity must not depend on resolution")
			assert.Equal(t, amount, got)
		}
	}
}

func TestAdjustZeroAmountShortCircuits(t *testing.T) {
	cases := []struct{ a, b Decimals }{
		{Unresolved, Unresolved},
		{ResolvedDecimals(18), Unresolved},
		{ResolvedDecimals(0), ResolvedDecimals(6)},
		{ResolvedDecimals(255), ResolvedDecimals(1)},
	}
	for _, c := range cases {
		got, err := Adjust(true, c.a, c.b, new(uint256.Int))
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	}
}

func TestAdjustRejectsUnresolvedAndZeroDecimals(t *testing.T) {
	tests := []struct {
		name string
		a, b Decimals
	}{
		{name: "A unresolved", a: Decimals{Count: 18}, b: ResolvedDecimals(6)},
		{name: "B unresolved", a: ResolvedDecimals(18), b: Unresolved},
		{name: "A zero decimals", a: ResolvedDecimals(0), b: ResolvedDecimals(6)},
		{name: "B zero decimals", a: ResolvedDecimals(6), b: ResolvedDecimals(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Adjust(true, tt.a, tt.b, uint256.NewInt(1))
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestAdjustOverflowFails(t *testing.T) {
	_, err := Adjust(false, ResolvedDecimals(18), ResolvedDecimals(6), new(uint256.Int).SetAllOne())
	assert.ErrorIs(t, err, domain.ErrOverflow)

	_, err = Adjust(true, ResolvedDecimals(100), ResolvedDecimals(1), uint256.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrOverflow, "10^99 does not fit in 256 bits")
}

func TestAdjustRoundTrip(t *testing.T) {
	a, b := ResolvedDecimals(18), ResolvedDecimals(6)

	for _, in := range []string{"1", "7", "1000000", "340282366920938463463374607431768211455"} {
		up, err := Adjust(false, a, b, u(in))
		require.NoError(t, err)
		back, err := Adjust(true, a, b, up)
		require.NoError(t, err)
		assert.Equal(t, in, back.Dec(), "lossless direction must round-trip exactly")
	}

	for _, in := range []string{"1", "999999999999", "1000000000000", "1000000000001", "123456789012345678901"} {
		x := u(in)
		down, err := Adjust(true, a, b, x)
		require.NoError(t, err)
		back, err := Adjust(false, a, b, down)
		require.NoError(t, err)

		assert.False(t, back.Gt(x), "lossy round-trip must never exceed the input")
		unit, _ := Pow10(12)
		exact := new(uint256.Int).Mod(x, unit).IsZero()
		assert.Equal(t, exact, back.Eq(x))
	}
}

func TestAdjustSwappedArgumentsAreEquivalent(t *testing.T) {
	x := u("987654321987654321")
	for _, sourceIsA := range []bool{true, false} {
		got, err := Adjust(sourceIsA, ResolvedDecimals(18), ResolvedDecimals(6), x)
		require.NoError(t, err)
		swapped, err := Adjust(!sourceIsA, ResolvedDecimals(6), ResolvedDecimals(18), x)
		require.NoError(t, err)
		assert.Equal(t, got, swapped)
	}
}

func TestPow10(t *testing.T) {
	v, err := Pow10(0)
	require.NoError(t, err)
	assert.Equal(t, "1", v.Dec())

	v, err = Pow10(77)
	require.NoError(t, err)
	assert.Len(t, v.Dec(), 78)

	_, err = Pow10(78)
	assert.ErrorIs(t, err, domain.ErrOverflow)
}
