// internal/domain/errors.go
package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidToken is returned when token decimals cannot be resolved, or a
	// resolved decimals value is zero while a non-zero amount is being adjusted.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNativeTransferFailed covers misuse of the native-asset path and failed value sends.
	ErrNativeTransferFailed = errors.New("native transfer failed")

	// ErrERC20TransferFailed is returned when transferFrom reverts or returns false.
	ErrERC20TransferFailed = errors.New("erc20 transfer failed")

	// ErrMalformedTransferResult is returned for return data that is neither empty nor one word.
	ErrMalformedTransferResult = errors.New("malformed transfer result")

	// ErrTargetNotAContract is returned when an empty response came from an address without code.
	ErrTargetNotAContract = errors.New("target not a contract")

	// ErrOverflow is returned instead of wrapping 256-bit arithmetic.
	ErrOverflow = errors.New("arithmetic overflow")
)

// Selector is the 4-byte function identifier of a contract call.
type Selector [4]byte

func (s Selector) IsZero() bool {
	return s == Selector{}
}

func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// Error carries the failure kind together with the call context that produced it.
type Error struct {
	Kind     error
	Target   common.Address
	Selector Selector
	Reason   error
}

// NewError builds a structured error. selector may be zero when no call was made.
func NewError(kind error, target common.Address, selector Selector, reason error) error {
	return &Error{
		Kind:     kind,
		Target:   target,
		Selector: selector,
		Reason:   reason,
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Target != (common.Address{}) {
		fmt.Fprintf(&b, " [target %s]", e.Target.Hex())
	}
	if !e.Selector.IsZero() {
		fmt.Fprintf(&b, " [selector %s]", e.Selector)
	}
	if e.Reason != nil {
		fmt.Fprintf(&b, ": %v", e.Reason)
	}
	return b.String()
}

// Unwrap returns the underlying reason so callers can inspect bubbled-up failures.
func (e *Error) Unwrap() error {
	return e.Reason
}

// Is matches the kind sentinel, e.g. errors.Is(err, ErrInvalidToken).
func (e *Error) Is(target error) bool {
	return e.Kind == target
}
