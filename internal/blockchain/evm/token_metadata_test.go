package evm

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swapvault/internal/blockchain"
)

var testToken = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func word(v uint64) []byte {
	w := uint256.NewInt(v).Bytes32()
	return w[:]
}

func packString(t *testing.T, s string) []byte {
	t.Helper()
	data, err := stringArgs.Pack(s)
	require.NoError(t, err)
	return data
}

func TestTryGetDecimals(t *testing.T) {
	tests := []struct {
		name      string
		ret       []byte
		err       error
		wantFound bool
		want      uint8
	}{
		{name: "canonical word", ret: word(18), wantFound: true, want: 18},
		{name: "zero decimals", ret: word(0), wantFound: true, want: 0},
		{name: "max uint8", ret: word(255), wantFound: true, want: 255},
		{name: "above uint8", ret: word(256), wantFound: false},
		{name: "short response", ret: word(18)[1:], wantFound: false},
		{name: "two words", ret: append(word(18), word(0)...), wantFound: false},
		{name: "empty response", ret: []byte{}, wantFound: false},
		{name: "call reverts", err: errors.New("execution reverted"), wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := new(MockCaller)
			caller.On("Call", mock.Anything, testToken, blockchain.SelectorDecimals[:]).Return(tt.ret, tt.err)

			probe := NewMetadataProbe(caller, zap.NewNop())
			found, decimals := probe.TryGetDecimals(context.Background(), testToken)

			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, decimals)
			caller.AssertExpectations(t)
		})
	}
}

func TestTryGetNameAndSymbol(t *testing.T) {
	legacy := make([]byte, 32)
	copy(legacy, "MKR")

	caller := new(MockCaller)
	caller.On("Call", mock.Anything, testToken, blockchain.SelectorName[:]).Return(packString(t, "Wrapped Ether"), nil)
	caller.On("Call", mock.Anything, testToken, blockchain.SelectorSymbol[:]).Return(legacy, nil)

	probe := NewMetadataProbe(caller, zap.NewNop())

	found, name := probe.TryGetName(context.Background(), testToken)
	assert.True(t, found)
	assert.Equal(t, "Wrapped Ether", name)

	found, symbol := probe.TryGetSymbol(context.Background(), testToken)
	assert.True(t, found)
	assert.Equal(t, "MKR", symbol)
}

func TestTryGetStringRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		ret  []byte
		err  error
	}{
		{name: "odd length", ret: make([]byte, 33)},
		{name: "offset out of bounds", ret: append(word(1024), word(3)...)},
		{name: "call failure", err: errors.New("boom")},
		{name: "invalid utf-8 bytes32", ret: append([]byte{0xff, 0xfe}, make([]byte, 30)...)},
		{name: "invalid utf-8 string", ret: packString(t, "\xff\xfeUSD")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := new(MockCaller)
			caller.On("Call", mock.Anything, testToken, blockchain.SelectorSymbol[:]).Return(tt.ret, tt.err)

			found, symbol := NewMetadataProbe(caller, zap.NewNop()).TryGetSymbol(context.Background(), testToken)
			assert.False(t, found)
			assert.Empty(t, symbol)
		})
	}
}

func TestMetadataCollectsAllFields(t *testing.T) {
	caller := new(MockCaller)
	caller.On("Call", mock.Anything, testToken, blockchain.SelectorDecimals[:]).Return(word(6), nil)
	caller.On("Call", mock.Anything, testToken, blockchain.SelectorName[:]).Return(packString(t, "USD Coin"), nil)
	caller.On("Call", mock.Anything, testToken, blockchain.SelectorSymbol[:]).Return(nil, errors.New("no symbol"))

	md := NewMetadataProbe(caller, zap.NewNop()).Metadata(context.Background(), testToken)

	assert.Equal(t, testToken, md.Token)
	assert.True(t, md.DecimalsFound)
	assert.Equal(t, uint8(6), md.Decimals)
	assert.True(t, md.NameFound)
	assert.Equal(t, "USD Coin", md.Name)
	assert.False(t, md.SymbolFound)
}
