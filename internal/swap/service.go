// internal/swap/service.go
package swap

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/swapvault/internal/domain"
	"github.com/rovshanmuradov/swapvault/internal/pricing"
	"github.com/rovshanmuradov/swapvault/internal/settlement"
	"github.com/rovshanmuradov/swapvault/internal/utils/metrics"
)

// SymbolProber reports token symbols for display.
type SymbolProber interface {
	TryGetSymbol(ctx context.Context, token common.Address) (bool, string)
}

// ServiceConfig wires the service's collaborators. Symbols and Metrics are optional.
type ServiceConfig struct {
	Converter  *pricing.Converter
	Transferer *settlement.Transferer
	Symbols    SymbolProber
	Metrics    *metrics.Collector
	Workers    int
	Logger     *zap.Logger
}

// Service quotes swaps and settles them against the executor's balances.
type Service struct {
	converter  *pricing.Converter
	transferer *settlement.Transferer
	symbols    SymbolProber
	metrics    *metrics.Collector
	workers    int
	logger     *zap.Logger
}

func NewService(cfg *ServiceConfig) (*Service, error) {
	if cfg.Converter == nil {
		return nil, fmt.Errorf("converter cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		converter:  cfg.Converter,
		transferer: cfg.Transferer,
		symbols:    cfg.Symbols,
		metrics:    cfg.Metrics,
		workers:    workers,
		logger:     cfg.Logger.Named("swap"),
	}, nil
}

// Quote prices req without moving any value.
func (s *Service) Quote(ctx context.Context, req Request) (*Quote, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := s.converter.GetAmountOut(ctx, req.IsBuy, req.TokenA, req.TokenB, req.AmountIn, req.Price)
	if s.metrics != nil {
		s.metrics.RecordQuote(ctx, req.Side(), time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("quote %s %s/%s: %w", req.Side(), req.TokenA, req.TokenB, err)
	}

	return &Quote{
		Request:      req,
		AmountOut:    out,
		FeeRateBp:    s.converter.FeeRateBp(),
		InputSymbol:  s.symbolOf(ctx, req.Input()),
		OutputSymbol: s.symbolOf(ctx, req.Output()),
	}, nil
}

// Settle quotes req and then moves value: the input amount from user to the
// executor, and the quoted output from the executor to user. Nothing is
// transferred when the quote fails, and the push leg is skipped when the pull
// leg fails.
func (s *Service) Settle(ctx context.Context, req Request, user common.Address, attachedNative *uint256.Int) (*Quote, error) {
	if s.transferer == nil {
		return nil, fmt.Errorf("settlement is not configured")
	}
	if attachedNative == nil {
		attachedNative = new(uint256.Int)
	}

	q, err := s.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	self := s.transferer.Self()
	if err := s.transfer(ctx, req.Input(), user, self, req.AmountIn, attachedNative); err != nil {
		return nil, &SettleError{Stage: StagePull, Err: err}
	}
	if err := s.transfer(ctx, req.Output(), self, user, q.AmountOut, new(uint256.Int)); err != nil {
		return nil, &SettleError{Stage: StagePush, Err: err}
	}

	s.logger.Info("swap settled",
		zap.String("side", req.Side()),
		zap.String("user", user.Hex()),
		zap.Stringer("input", req.Input()),
		zap.String("amount_in", req.AmountIn.Dec()),
		zap.Stringer("output", req.Output()),
		zap.String("amount_out", q.AmountOut.Dec()))

	return q, nil
}

// QuoteBatch prices independent requests concurrently. Per-request failures
// are reported in the results; the returned error is only set when ctx ends.
func (s *Service) QuoteBatch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	results := make([]BatchResult, len(reqs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				results[i] = BatchResult{Index: i, Err: err}
				return err
			}
			q, err := s.Quote(gCtx, req)
			results[i] = BatchResult{Index: i, Quote: q, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *Service) transfer(ctx context.Context, cur domain.Currency, from, to common.Address, amount, attached *uint256.Int) error {
	start := time.Now()
	err := s.transferer.TransferValue(ctx, cur, from, to, amount, attached)
	if s.metrics != nil {
		s.metrics.RecordTransfer(ctx, cur.Kind().String(), time.Since(start), err)
	}
	return err
}

func (s *Service) symbolOf(ctx context.Context, cur domain.Currency) string {
	addr, ok := cur.Address()
	if !ok {
		return "NATIVE"
	}
	if s.symbols == nil {
		return ""
	}
	if found, symbol := s.symbols.TryGetSymbol(ctx, addr); found {
		return symbol
	}
	return ""
}
