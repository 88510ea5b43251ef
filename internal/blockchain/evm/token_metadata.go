// internal/blockchain/evm/token_metadata.go
package evm

import (
	"bytes"
	"context"
	"math"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swapvault/internal/blockchain"
	"github.com/rovshanmuradov/swapvault/internal/domain"
)

// TokenMetadata holds whatever metadata a token was willing to report.
type TokenMetadata struct {
	Token         common.Address
	Decimals      uint8
	DecimalsFound bool
	Name          string
	NameFound     bool
	Symbol        string
	SymbolFound   bool
}

// MetadataProbe queries token metadata without ever failing the caller.
// Tokens are untrusted: a missing, reverting or non-conforming accessor only
// reports "not found".
type MetadataProbe struct {
	caller blockchain.Caller
	logger *zap.Logger
}

var stringArgs = func() abi.Arguments {
	ty, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: ty}}
}()

func NewMetadataProbe(caller blockchain.Caller, logger *zap.Logger) *MetadataProbe {
	return &MetadataProbe{
		caller: caller,
		logger: logger.Named("token-metadata"),
	}
}

// TryGetDecimals calls decimals(). The response must be exactly one word
// holding a value that fits in 8 bits.
func (p *MetadataProbe) TryGetDecimals(ctx context.Context, token common.Address) (bool, uint8) {
	ret, ok := p.call(ctx, token, blockchain.SelectorDecimals)
	if !ok {
		return false, 0
	}
	if len(ret) != blockchain.WordSize {
		p.logger.Debug("decimals() returned unexpected length",
			zap.String("token", token.Hex()),
			zap.Int("length", len(ret)))
		return false, 0
	}

	v := new(uint256.Int).SetBytes32(ret)
	if !v.IsUint64() || v.Uint64() > math.MaxUint8 {
		p.logger.Debug("decimals() out of range",
			zap.String("token", token.Hex()),
			zap.String("value", v.Dec()))
		return false, 0
	}
	return true, uint8(v.Uint64())
}

// TryGetName calls name().
func (p *MetadataProbe) TryGetName(ctx context.Context, token common.Address) (bool, string) {
	return p.tryGetString(ctx, token, blockchain.SelectorName)
}

// TryGetSymbol calls symbol().
func (p *MetadataProbe) TryGetSymbol(ctx context.Context, token common.Address) (bool, string) {
	return p.tryGetString(ctx, token, blockchain.SelectorSymbol)
}

// Metadata collects decimals, name and symbol in one pass.
func (p *MetadataProbe) Metadata(ctx context.Context, token common.Address) TokenMetadata {
	md := TokenMetadata{Token: token}
	md.DecimalsFound, md.Decimals = p.TryGetDecimals(ctx, token)
	md.NameFound, md.Name = p.TryGetName(ctx, token)
	md.SymbolFound, md.Symbol = p.TryGetSymbol(ctx, token)

	p.logger.Debug("token metadata probed",
		zap.String("token", token.Hex()),
		zap.Bool("decimals_found", md.DecimalsFound),
		zap.Uint8("decimals", md.Decimals),
		zap.String("symbol", md.Symbol),
		zap.String("name", md.Name))

	return md
}

func (p *MetadataProbe) tryGetString(ctx context.Context, token common.Address, sel domain.Selector) (bool, string) {
	ret, ok := p.call(ctx, token, sel)
	if !ok {
		return false, ""
	}
	s, ok := decodeString(ret)
	if !ok {
		p.logger.Debug("string accessor returned non-conforming data",
			zap.String("token", token.Hex()),
			zap.Stringer("selector", sel),
			zap.Int("length", len(ret)))
		return false, ""
	}
	return true, s
}

func (p *MetadataProbe) call(ctx context.Context, token common.Address, sel domain.Selector) ([]byte, bool) {
	ret, err := p.caller.Call(ctx, token, sel[:])
	if err != nil {
		p.logger.Debug("metadata call failed",
			zap.String("token", token.Hex()),
			zap.Stringer("selector", sel),
			zap.Error(err))
		return nil, false
	}
	return ret, true
}

// decodeString accepts a single ABI-encoded string or a legacy bytes32 value.
func decodeString(ret []byte) (string, bool) {
	switch {
	case len(ret) == blockchain.WordSize:
		trimmed := bytes.TrimRight(ret, "\x00")
		if !utf8.Valid(trimmed) {
			return "", false
		}
		return string(trimmed), true
	case len(ret) >= 2*blockchain.WordSize && len(ret)%blockchain.WordSize == 0:
		values, err := stringArgs.Unpack(ret)
		if err != nil || len(values) != 1 {
			return "", false
		}
		s, ok := values[0].(string)
		if !ok || !utf8.ValidString(s) {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}
