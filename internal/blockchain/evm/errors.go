// internal/blockchain/evm/errors.go
package evm

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrChainIDMismatch is returned by Dial when the node serves a different chain.
var ErrChainIDMismatch = errors.New("chain id mismatch")

// Error is an RPC failure annotated with the node and method that produced it.
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with node and method context.
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// RevertError is an execution revert reported by the node, with the decoded
// Error(string) reason when the revert data carried one.
type RevertError struct {
	Reason string
	Data   []byte
	Err    error
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return "execution reverted: " + e.Reason
	}
	if len(e.Data) > 0 {
		return "execution reverted: " + hexutil.Encode(e.Data)
	}
	return e.Err.Error()
}

func (e *RevertError) Unwrap() error {
	return e.Err
}

// RevertReason returns the decoded revert reason carried by err, if any.
func RevertReason(err error) (string, bool) {
	var rerr *RevertError
	if errors.As(err, &rerr) && rerr.Reason != "" {
		return rerr.Reason, true
	}
	return "", false
}

// asRevert converts an RPC data error carrying revert bytes into a RevertError.
// Other errors are returned unchanged.
func asRevert(err error) error {
	var derr rpc.DataError
	if !errors.As(err, &derr) {
		return err
	}
	raw, ok := derr.ErrorData().(string)
	if !ok {
		return err
	}
	data, decodeErr := hexutil.Decode(raw)
	if decodeErr != nil {
		return err
	}
	rerr := &RevertError{Data: data, Err: err}
	if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
		rerr.Reason = reason
	}
	return rerr
}
