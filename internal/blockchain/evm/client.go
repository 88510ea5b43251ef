// internal/blockchain/evm/client.go
package evm

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swapvault/internal/blockchain"
)

var _ blockchain.Backend = (*Client)(nil)

// Client is a thin adapter over go-ethereum's ethclient. Every call is issued
// as an eth_call from the executor address against the latest block, so native
// sends and token transfers are simulated rather than broadcast.
type Client struct {
	eth    *ethclient.Client
	url    string
	self   common.Address
	logger *zap.Logger
}

// DialOptions controls how Dial connects to a node.
type DialOptions struct {
	URL      string
	Executor common.Address
	ChainID  uint64 // 0 disables the check
	Retries  int
	Timeout  time.Duration
}

// NewClient wraps an already connected ethclient.
func NewClient(eth *ethclient.Client, url string, self common.Address, logger *zap.Logger) *Client {
	return &Client{
		eth:    eth,
		url:    url,
		self:   self,
		logger: logger.Named("evm-client"),
	}
}

// Dial connects to the node with exponential backoff. A chain id mismatch is
// permanent and is not retried.
func Dial(ctx context.Context, opts DialOptions, logger *zap.Logger) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	op := func() (*ethclient.Client, error) {
		dialCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		eth, err := ethclient.DialContext(dialCtx, opts.URL)
		if err != nil {
			return nil, NewError(err, opts.URL, "dial")
		}
		if opts.ChainID == 0 {
			return eth, nil
		}

		id, err := eth.ChainID(dialCtx)
		if err != nil {
			eth.Close()
			return nil, NewError(err, opts.URL, "eth_chainId")
		}
		if !id.IsUint64() || id.Uint64() != opts.ChainID {
			eth.Close()
			return nil, backoff.Permanent(fmt.Errorf("%w: expected %d, node reports %s",
				ErrChainIDMismatch, opts.ChainID, id))
		}
		return eth, nil
	}

	eth, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(opts.Retries)+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("RPC dial failed, retrying",
				zap.String("url", opts.URL),
				zap.Duration("backoff", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.URL, err)
	}

	logger.Info("Connected to RPC node",
		zap.String("url", opts.URL),
		zap.String("executor", opts.Executor.Hex()))

	return NewClient(eth, opts.URL, opts.Executor, logger), nil
}

// Self returns the executor address calls are issued from.
func (c *Client) Self() common.Address {
	return c.self
}

// Call runs data against to from the executor address.
func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		From: c.self,
		To:   &to,
		Data: data,
	}
	ret, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		c.logger.Debug("eth_call error",
			zap.String("to", to.Hex()),
			zap.Error(err))
		return nil, NewError(asRevert(err), c.url, "eth_call")
	}
	return ret, nil
}

// CodeAt returns the code deployed at addr in the latest block.
func (c *Client) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	code, err := c.eth.CodeAt(ctx, addr, nil)
	if err != nil {
		c.logger.Debug("eth_getCode error",
			zap.String("address", addr.Hex()),
			zap.Error(err))
		return nil, NewError(err, c.url, "eth_getCode")
	}
	return code, nil
}

// SendValue simulates a plain value transfer from the executor to to.
func (c *Client) SendValue(ctx context.Context, to common.Address, amount *uint256.Int) error {
	msg := ethereum.CallMsg{
		From:  c.self,
		To:    &to,
		Value: amount.ToBig(),
	}
	if _, err := c.eth.CallContract(ctx, msg, nil); err != nil {
		c.logger.Debug("value send simulation failed",
			zap.String("to", to.Hex()),
			zap.String("amount", amount.Dec()),
			zap.Error(err))
		return NewError(asRevert(err), c.url, "eth_call")
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.eth.Close()
}
