// internal/settlement/transfer.go
package settlement

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

var (
	errRecipientValueMismatch = errors.New("attached native value does not match amount")
	errUnsupportedRelay       = errors.New("native transfer must start or end at the executor")
	errValueWithToken         = errors.New("native value attached to a token transfer")
	errTransferReturnedFalse  = errors.New("transferFrom returned false")
)

// Transferer moves native value or tokens on behalf of the executing party Self.
type Transferer struct {
	backend blockchain.Backend
	self    common.Address
	logger  *zap.Logger
}

func NewTransferer(backend blockchain.Backend, self common.Address, logger *zap.Logger) *Transferer {
	return &Transferer{
		backend: backend,
		self:    self,
		logger:  logger.Named("settlement"),
	}
}

// Self returns the executing party's address.
func (t *Transferer) Self() common.Address {
	return t.self
}

// TransferValue moves amount of currency from from to to. attachedNative is
// the native value that accompanied the enclosing call.
//
// For the native asset, an incoming transfer (to == Self) is satisfied by the
// attached value and must match amount exactly; an outgoing one (from == Self)
// is a direct send. Token transfers go through transferFrom and accept an
// empty return from a contract or any non-zero one-word return.
func (t *Transferer) TransferValue(
	ctx context.Context,
	currency domain.Currency,
	from, to common.Address,
	amount, attachedNative *uint256.Int,
) error {
	if amount == nil {
		amount = new(uint256.Int)
	}
	if attachedNative == nil {
		attachedNative = new(uint256.Int)
	}

	var err error
	switch currency.Kind() {
	case domain.CurrencyNative:
		err = t.transferNative(ctx, from, to, amount, attachedNative)
	case domain.CurrencyToken:
		token, _ := currency.Address()
		err = t.transferToken(ctx, token, from, to, amount, attachedNative)
	default:
		err = fmt.Errorf("unknown currency kind %s", currency.Kind())
	}

	if err != nil {
		t.logger.Warn("transfer failed",
			zap.Stringer("currency", currency),
			zap.String("from", from.Hex()),
			zap.String("to", to.Hex()),
			zap.String("amount", amount.Dec()),
			zap.Error(err))
		return err
	}

	t.logger.Debug("transfer succeeded",
		zap.Stringer("currency", currency),
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.String("amount", amount.Dec()))
	return nil
}

func (t *Transferer) transferNative(ctx context.Context, from, to common.Address, amount, attached *uint256.Int) error {
	switch {
	case to == t.self:
		if !attached.Eq(amount) {
			return domain.NewError(domain.ErrNativeTransferFailed, to, domain.Selector{},
				fmt.Errorf("%w: attached %s, amount %s", errRecipientValueMismatch, attached.Dec(), amount.Dec()))
		}
		return nil
	case from == t.self:
		if err := t.backend.SendValue(ctx, to, amount); err != nil {
			return domain.NewError(domain.ErrNativeTransferFailed, to, domain.Selector{}, err)
		}
		return nil
	default:
		return domain.NewError(domain.ErrNativeTransferFailed, to, domain.Selector{}, errUnsupportedRelay)
	}
}

func (t *Transferer) transferToken(ctx context.Context, token, from, to common.Address, amount, attached *uint256.Int) error {
	if !attached.IsZero() {
		return domain.NewError(domain.ErrNativeTransferFailed, token, domain.Selector{}, errValueWithToken)
	}

	sel := blockchain.SelectorTransferFrom
	ret, err := t.backend.Call(ctx, token, blockchain.EncodeTransferFrom(from, to, amount))
	if err != nil {
		return domain.NewError(domain.ErrERC20TransferFailed, token, sel, err)
	}
	return t.classifyResult(ctx, token, ret)
}

// classifyResult dispatches on the length of transferFrom's return data.
func (t *Transferer) classifyResult(ctx context.Context, token common.Address, ret []byte) error {
	sel := blockchain.SelectorTransferFrom

	switch len(ret) {
	case 0:
		// Legacy tokens return nothing; only trust that from an actual contract.
		code, err := t.backend.CodeAt(ctx, token)
		if err != nil {
			return fmt.Errorf("failed to read code at %s: %w", token.Hex(), err)
		}
		if len(code) == 0 {
			return domain.NewError(domain.ErrTargetNotAContract, token, sel, nil)
		}
		return nil
	case blockchain.WordSize:
		if isZeroWord(ret) {
			return domain.NewError(domain.ErrERC20TransferFailed, token, sel, errTransferReturnedFalse)
		}
		return nil
	default:
		return domain.NewError(domain.ErrMalformedTransferResult, token, sel,
			fmt.Errorf("unexpected return length %d", len(ret)))
	}
}

func isZeroWord(word []byte) bool {
	for _, b := range word {
		if b != 0 {
			return false
		}
	}
	return true
}
