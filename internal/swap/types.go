// internal/swap/types.go
package swap

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/rovshanmuradov/swapvault/internal/domain"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Request describes one swap between TokenA and the reference token TokenB.
// Price is pre-scaled to TokenB's decimals.
type Request struct {
	IsBuy    bool
	TokenA   domain.Currency
	TokenB   domain.Currency
	AmountIn *uint256.Int
	Price    *uint256.Int
}

func (r Request) Side() string {
	if r.IsBuy {
		return SideBuy
	}
	return SideSell
}

// Input is the currency the user spends: TokenA on a buy, TokenB on a sell.
func (r Request) Input() domain.Currency {
	if r.IsBuy {
		return r.TokenA
	}
	return r.TokenB
}

// Output is the currency the user receives.
func (r Request) Output() domain.Currency {
	if r.IsBuy {
		return r.TokenB
	}
	return r.TokenA
}

func (r Request) validate() error {
	if r.AmountIn == nil {
		return &ValidationError{Field: "amount_in", Message: "is required"}
	}
	if r.Price == nil {
		return &ValidationError{Field: "price", Message: "is required"}
	}
	return nil
}

// Quote is a priced request.
type Quote struct {
	Request
	AmountOut    *uint256.Int
	FeeRateBp    uint64
	InputSymbol  string
	OutputSymbol string
}

// BatchResult is the outcome of one request in QuoteBatch.
type BatchResult struct {
	Index int
	Quote *Quote
	Err   error
}

// ValidationError reports a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// Settlement stages.
const (
	StagePull = "pull"
	StagePush = "push"
)

// SettleError reports which settlement leg failed.
type SettleError struct {
	Stage string
	Err   error
}

func (e *SettleError) Error() string {
	return fmt.Sprintf("settlement failed at %s: %v", e.Stage, e.Err)
}

func (e *SettleError) Unwrap() error {
	return e.Err
}
