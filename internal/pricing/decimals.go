// internal/pricing/decimals.go
package pricing

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/rovshanmuradov/swapvault/internal/domain"
)

// maxPow10 is the largest exponent for which 10^n fits in 256 bits.
const maxPow10 = 77

// Decimals is a token's decimal count together with whether it could be resolved.
type Decimals struct {
	Count    uint8
	Resolved bool
}

// ResolvedDecimals wraps a decimal count obtained from a successful probe.
func ResolvedDecimals(count uint8) Decimals {
	return Decimals{Count: count, Resolved: true}
}

// Unresolved marks a failed probe.
var Unresolved = Decimals{}

var (
	errUnusableDecimals = errors.New("decimals unresolved or zero")
	errZeroDecimals     = errors.New("zero decimals")
)

// Pow10 returns 10^n, failing with domain.ErrOverflow when it does not fit in 256 bits.
func Pow10(n uint) (*uint256.Int, error) {
	if n > maxPow10 {
		return nil, domain.ErrOverflow
	}
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n))), nil
}

// Adjust rescales amountIn between the decimal bases of token A and token B.
// sourceIsA tells which basis amountIn is currently expressed in. Division
// truncates toward zero.
//
// A zero amount is returned as zero without looking at decimals, and equal
// counts are the identity. Otherwise both counts must be resolved and non-zero.
func Adjust(sourceIsA bool, decA, decB Decimals, amountIn *uint256.Int) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return new(uint256.Int), nil
	}
	if decA.Count == decB.Count {
		return new(uint256.Int).Set(amountIn), nil
	}
	// Zero decimals are rejected together with unresolved ones. Zero-decimal
	// tokens exist, but the rejection is kept as-is.
	if !decA.Resolved || !decB.Resolved || decA.Count == 0 || decB.Count == 0 {
		return nil, domain.NewError(domain.ErrInvalidToken, common.Address{}, domain.Selector{}, errUnusableDecimals)
	}

	var (
		diff     uint
		multiply bool
	)
	if decA.Count > decB.Count {
		diff = uint(decA.Count - decB.Count)
		multiply = !sourceIsA
	} else {
		diff = uint(decB.Count - decA.Count)
		multiply = sourceIsA
	}

	factor, err := Pow10(diff)
	if err != nil {
		return nil, err
	}
	if multiply {
		return mul(amountIn, factor)
	}
	return new(uint256.Int).Div(amountIn, factor), nil
}

func mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, domain.ErrOverflow
	}
	return z, nil
}
