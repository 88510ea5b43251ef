// internal/blockchain/types.go
package blockchain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Function signatures of the token interface used by the core.
const (
	SigDecimals     = "decimals()"
	SigName         = "name()"
	SigSymbol       = "symbol()"
	SigTransferFrom = "transferFrom(address,address,uint256)"
)

// WordSize is the width of one ABI word.
const WordSize = 32

var (
	SelectorDecimals     = NewSelector(SigDecimals)
	SelectorName         = NewSelector(SigName)
	SelectorSymbol       = NewSelector(SigSymbol)
	SelectorTransferFrom = NewSelector(SigTransferFrom)
)

// EncodeTransferFrom packs transferFrom(from, to, amount) calldata.
func EncodeTransferFrom(from, to common.Address, amount *uint256.Int) []byte {
	data := make([]byte, 0, 4+3*WordSize)
	data = append(data, SelectorTransferFrom[:]...)
	data = append(data, common.LeftPadBytes(from.Bytes(), WordSize)...)
	data = append(data, common.LeftPadBytes(to.Bytes(), WordSize)...)
	word := amount.Bytes32()
	data = append(data, word[:]...)
	return data
}
