// cmd/swapvault/requests.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/holiman/uint256"

	"github.com/rovshanmuradov/swapvault/internal/domain"
	"github.com/rovshanmuradov/swapvault/internal/swap"
)

// requestInput is the textual form of a swap request, shared by flags and batch files.
type requestInput struct {
	Side     string `json:"side"`
	TokenA   string `json:"token_a"`
	TokenB   string `json:"token_b"`
	AmountIn string `json:"amount_in"`
	Price    string `json:"price"`
}

func (in requestInput) toRequest() (swap.Request, error) {
	var req swap.Request

	switch strings.ToLower(strings.TrimSpace(in.Side)) {
	case swap.SideBuy:
		req.IsBuy = true
	case swap.SideSell:
		req.IsBuy = false
	default:
		return req, fmt.Errorf("side must be %q or %q, got %q", swap.SideBuy, swap.SideSell, in.Side)
	}

	var err error
	if req.TokenA, err = domain.ParseCurrency(in.TokenA); err != nil {
		return req, fmt.Errorf("token_a: %w", err)
	}
	if req.TokenB, err = domain.ParseCurrency(in.TokenB); err != nil {
		return req, fmt.Errorf("token_b: %w", err)
	}
	if req.AmountIn, err = parseAmount(in.AmountIn); err != nil {
		return req, fmt.Errorf("amount_in: %w", err)
	}
	if req.Price, err = parseAmount(in.Price); err != nil {
		return req, fmt.Errorf("price: %w", err)
	}
	return req, nil
}

// parseAmount accepts base-10 or 0x-prefixed integers; an empty string is zero.
func parseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(uint256.Int), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return uint256.FromHex(s)
	}
	return uint256.FromDecimal(s)
}

func loadBatch(path string) ([]swap.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var inputs []requestInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to decode batch file: %w", err)
	}

	reqs := make([]swap.Request, 0, len(inputs))
	for i, in := range inputs {
		req, err := in.toRequest()
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
