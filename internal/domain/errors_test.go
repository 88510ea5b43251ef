package domain

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesKindAndReason(t *testing.T) {
	reason := errors.New("execution reverted: insufficient allowance")
	target := common.HexToAddress("0x1111111111111111111111111111111111111111")
	err := NewError(ErrERC20TransferFailed, target, Selector{0x23, 0xb8, 0x72, 0xdd}, reason)

	assert.ErrorIs(t, err, ErrERC20TransferFailed)
	assert.ErrorIs(t, err, reason)
	assert.NotErrorIs(t, err, ErrNativeTransferFailed)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, target, verr.Target)
	assert.Equal(t, "0x23b872dd", verr.Selector.String())
	assert.Contains(t, err.Error(), "selector 0x23b872dd")
	assert.Contains(t, err.Error(), "insufficient allowance")
}

func TestErrorWithoutContext(t *testing.T) {
	err := NewError(ErrInvalidToken, common.Address{}, Selector{}, nil)
	assert.Equal(t, "invalid token", err.Error())
}
