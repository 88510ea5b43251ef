// internal/pricing/converter.go
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swapvault/internal/blockchain"
	"github.com/rovshanmuradov/swapvault/internal/domain"
)

const (
	// FeeDenominator is the basis-point denominator of the fee rate.
	FeeDenominator = 10000
	// DefaultFeeRateBp is 0.1%.
	DefaultFeeRateBp = 10
	// DefaultNativeDecimals is the decimal basis of the chain's native asset.
	DefaultNativeDecimals = 18
)

// DecimalsProber resolves a token's decimals without failing.
type DecimalsProber interface {
	TryGetDecimals(ctx context.Context, token common.Address) (bool, uint8)
}

// Config holds the converter's fixed parameters.
type Config struct {
	FeeRateBp      uint64
	NativeDecimals uint8
}

// DefaultConfig returns the 10/10000 fee and an 18-decimal native asset.
func DefaultConfig() Config {
	return Config{
		FeeRateBp:      DefaultFeeRateBp,
		NativeDecimals: DefaultNativeDecimals,
	}
}

// Converter computes fee-adjusted swap outputs between two currencies.
type Converter struct {
	prober         DecimalsProber
	feeRateBp      uint64
	nativeDecimals uint8
	logger         *zap.Logger
}

func NewConverter(prober DecimalsProber, cfg Config, logger *zap.Logger) (*Converter, error) {
	if prober == nil {
		return nil, fmt.Errorf("decimals prober cannot be nil")
	}
	if cfg.FeeRateBp >= FeeDenominator {
		return nil, fmt.Errorf("fee rate %d bp must be below %d", cfg.FeeRateBp, FeeDenominator)
	}
	return &Converter{
		prober:         prober,
		feeRateBp:      cfg.FeeRateBp,
		nativeDecimals: cfg.NativeDecimals,
		logger:         logger.Named("price-converter"),
	}, nil
}

// FeeRateBp returns the configured fee in basis points.
func (c *Converter) FeeRateBp() uint64 {
	return c.feeRateBp
}

// GetAmountOut returns how much the user receives for amountIn at price.
//
// tokenB is the reference token: price is pre-scaled to its decimals. A buy
// spends tokenA for tokenB and takes the fee from the input before rescaling;
// a sell spends tokenB for tokenA and takes the fee from the rescaled output.
func (c *Converter) GetAmountOut(
	ctx context.Context,
	isBuy bool,
	tokenA, tokenB domain.Currency,
	amountIn, price *uint256.Int,
) (*uint256.Int, error) {
	decA, err := c.resolveDecimals(ctx, tokenA)
	if err != nil {
		return nil, err
	}
	decB, err := c.resolveDecimals(ctx, tokenB)
	if err != nil {
		return nil, err
	}

	var out *uint256.Int
	if isBuy {
		out, err = c.buy(decA, decB, amountIn, price)
	} else {
		out, err = c.sell(decA, decB, amountIn, price)
	}
	if err != nil {
		return nil, attachToken(err, tokenA, tokenB, decA)
	}

	c.logger.Debug("amount out computed",
		zap.Bool("is_buy", isBuy),
		zap.Stringer("token_a", tokenA),
		zap.Stringer("token_b", tokenB),
		zap.Uint8("decimals_a", decA.Count),
		zap.Uint8("decimals_b", decB.Count),
		zap.String("amount_in", amountIn.Dec()),
		zap.String("price", price.Dec()),
		zap.String("amount_out", out.Dec()))

	return out, nil
}

// buy: netIn = floor(amountIn/10000) * (10000-fee); normalized by 10^decB,
// multiplied by price, then rescaled from A's basis.
func (c *Converter) buy(decA, decB Decimals, amountIn, price *uint256.Int) (*uint256.Int, error) {
	netIn := new(uint256.Int).Div(amountIn, uint256.NewInt(FeeDenominator))
	netIn, err := mul(netIn, uint256.NewInt(FeeDenominator-c.feeRateBp))
	if err != nil {
		return nil, err
	}

	unit, err := Pow10(uint(decB.Count))
	if err != nil {
		return nil, err
	}
	normalizedIn := new(uint256.Int).Div(netIn, unit)

	scaled, err := mul(normalizedIn, price)
	if err != nil {
		return nil, err
	}
	return Adjust(true, decA, decB, scaled)
}

// sell: scaled = floor(amountIn*price / 10^decB), rescaled into A's basis,
// then the fee is taken from the output.
func (c *Converter) sell(decA, decB Decimals, amountIn, price *uint256.Int) (*uint256.Int, error) {
	unit, err := Pow10(uint(decB.Count))
	if err != nil {
		return nil, err
	}
	scaled, err := mul(amountIn, price)
	if err != nil {
		return nil, err
	}
	scaled.Div(scaled, unit)

	grossOut, err := Adjust(false, decA, decB, scaled)
	if err != nil {
		return nil, err
	}

	out, err := mul(grossOut, uint256.NewInt(FeeDenominator-c.feeRateBp))
	if err != nil {
		return nil, err
	}
	return out.Div(out, uint256.NewInt(FeeDenominator)), nil
}

// attachToken names the zero-decimals token on an InvalidToken raised by
// Adjust. Both counts are resolved by then, so a zero count is the cause.
func attachToken(err error, tokenA, tokenB domain.Currency, decA Decimals) error {
	if !errors.Is(err, domain.ErrInvalidToken) {
		return err
	}
	offending := tokenB
	if decA.Count == 0 {
		offending = tokenA
	}
	addr, _ := offending.Address()
	return domain.NewError(domain.ErrInvalidToken, addr, blockchain.SelectorDecimals, errZeroDecimals)
}

func (c *Converter) resolveDecimals(ctx context.Context, cur domain.Currency) (Decimals, error) {
	switch cur.Kind() {
	case domain.CurrencyNative:
		return ResolvedDecimals(c.nativeDecimals), nil
	case domain.CurrencyToken:
		addr, _ := cur.Address()
		found, count := c.prober.TryGetDecimals(ctx, addr)
		if !found {
			c.logger.Debug("decimals unavailable", zap.String("token", addr.Hex()))
			return Unresolved, domain.NewError(domain.ErrInvalidToken, addr, blockchain.SelectorDecimals,
				fmt.Errorf("decimals not resolvable"))
		}
		return ResolvedDecimals(count), nil
	default:
		return Unresolved, fmt.Errorf("unknown currency kind %s", cur.Kind())
	}
}
