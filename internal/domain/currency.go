// internal/domain/currency.go
package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CurrencyKind discriminates the Currency variants.
type CurrencyKind uint8

const (
	CurrencyNative CurrencyKind = iota
	CurrencyToken
)

func (k CurrencyKind) String() string {
	switch k {
	case CurrencyNative:
		return "native"
	case CurrencyToken:
		return "token"
	default:
		return fmt.Sprintf("CurrencyKind(%d)", uint8(k))
	}
}

// Currency identifies a unit of value: either the chain's native asset or an
// external token contract. The zero value is the native asset.
type Currency struct {
	kind    CurrencyKind
	address common.Address
}

// Native returns the chain's base asset.
func Native() Currency {
	return Currency{kind: CurrencyNative}
}

// Token returns the currency backed by the token contract at addr.
func Token(addr common.Address) Currency {
	return Currency{kind: CurrencyToken, address: addr}
}

func (c Currency) Kind() CurrencyKind {
	return c.kind
}

func (c Currency) IsNative() bool {
	return c.kind == CurrencyNative
}

// Address returns the token contract address. ok is false for the native asset.
func (c Currency) Address() (addr common.Address, ok bool) {
	if c.kind != CurrencyToken {
		return common.Address{}, false
	}
	return c.address, true
}

func (c Currency) String() string {
	if c.kind == CurrencyToken {
		return c.address.Hex()
	}
	return "native"
}

// ParseCurrency accepts "native" (or "eth") and 0x-prefixed hex addresses.
func ParseCurrency(s string) (Currency, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "native", "eth":
		return Native(), nil
	}
	if !common.IsHexAddress(s) {
		return Currency{}, fmt.Errorf("invalid currency %q: expected \"native\" or hex address", s)
	}
	return Token(common.HexToAddress(s)), nil
}
