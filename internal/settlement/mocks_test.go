// internal/settlement/mocks_test.go
package settlement

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
)

// MockBackend implements blockchain.Backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	args := m.Called(ctx, to, data)
	ret, _ := args.Get(0).([]byte)
	return ret, args.Error(1)
}

func (m *MockBackend) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	args := m.Called(ctx, addr)
	code, _ := args.Get(0).([]byte)
	return code, args.Error(1)
}

func (m *MockBackend) SendValue(ctx context.Context, to common.Address, amount *uint256.Int) error {
	args := m.Called(ctx, to, amount)
	return args.Error(0)
}
