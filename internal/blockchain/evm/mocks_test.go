// internal/blockchain/evm/mocks_test.go
package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/mock"
)

// MockCaller implements blockchain.Caller.
type MockCaller struct {
	mock.Mock
}

func (m *MockCaller) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	args := m.Called(ctx, to, data)
	ret, _ := args.Get(0).([]byte)
	return ret, args.Error(1)
}

// fakeEth serves the handful of eth_* methods the client uses, in process.
type fakeEth struct {
	chainID int64
	code    map[common.Address][]byte
	returns map[common.Address][]byte
	reverts map[common.Address][]byte
}

func newFakeEth(chainID int64) *fakeEth {
	return &fakeEth{
		chainID: chainID,
		code:    make(map[common.Address][]byte),
		returns: make(map[common.Address][]byte),
		reverts: make(map[common.Address][]byte),
	}
}

func (f *fakeEth) ChainId() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(f.chainID))
}

func (f *fakeEth) GetCode(addr common.Address, block string) (hexutil.Bytes, error) {
	return f.code[addr], nil
}

func (f *fakeEth) Call(args map[string]interface{}, block string) (hexutil.Bytes, error) {
	raw, _ := args["to"].(string)
	to := common.HexToAddress(raw)
	if data, ok := f.reverts[to]; ok {
		return nil, &revertErr{data: data}
	}
	return f.returns[to], nil
}

type revertErr struct {
	data []byte
}

func (e *revertErr) Error() string          { return "execution reverted" }
func (e *revertErr) ErrorCode() int         { return 3 }
func (e *revertErr) ErrorData() interface{} { return hexutil.Encode(e.data) }
