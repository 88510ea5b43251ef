// internal/blockchain/blockchain.go
package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/rovshanmuradov/swapvault/internal/domain"
)

// Caller issues a message call from the executing party and returns the raw return data.
type Caller interface {
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// CodeReader reports the executable code currently deployed at an address.
type CodeReader interface {
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
}

// ValueSender sends native value from the executing party.
type ValueSender interface {
	SendValue(ctx context.Context, to common.Address, amount *uint256.Int) error
}

// Backend is the execution environment the settlement core runs against.
type Backend interface {
	Caller
	CodeReader
	ValueSender
}

// NewSelector returns the first four bytes of keccak256(signature).
func NewSelector(signature string) domain.Selector {
	var sel domain.Selector
	copy(sel[:], crypto.Keccak256([]byte(signature))[:4])
	return sel
}
