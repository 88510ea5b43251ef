// cmd/swapvault/commands.go
package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swapvault/internal/blockchain/evm"
	"github.com/rovshanmuradov/swapvault/internal/export"
	"github.com/rovshanmuradov/swapvault/internal/swap"
)

func runQuote(ctx context.Context, svc *swap.Service, flags *commandFlags, out io.Writer) error {
	req, err := flags.input.toRequest()
	if err != nil {
		return err
	}
	q, err := svc.Quote(ctx, req)
	if err != nil {
		return err
	}
	printQuote(out, q)
	return nil
}

func runSettle(ctx context.Context, svc *swap.Service, flags *commandFlags, out io.Writer, log *zap.Logger) error {
	req, err := flags.input.toRequest()
	if err != nil {
		return err
	}
	if !common.IsHexAddress(flags.user) {
		return fmt.Errorf("%w: -user must be a hex address", errUsage)
	}
	value, err := parseAmount(flags.value)
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}

	q, err := svc.Settle(ctx, req, common.HexToAddress(flags.user), value)
	if err != nil {
		log.Error("Settlement failed", settleFailureFields(err)...)
		return err
	}
	printQuote(out, q)
	fmt.Fprintln(out, "settlement: ok (simulated)")
	return nil
}

// settleFailureFields adds the decoded revert reason when the node reported one.
func settleFailureFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	if reason, ok := evm.RevertReason(err); ok {
		fields = append(fields, zap.String("revert_reason", reason))
	}
	return fields
}

func runBatch(ctx context.Context, svc *swap.Service, exporter *export.QuoteExporter, flags *commandFlags, out io.Writer) error {
	if flags.file == "" {
		return fmt.Errorf("%w: -file is required", errUsage)
	}
	format, err := export.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	reqs, err := loadBatch(flags.file)
	if err != nil {
		return err
	}

	results, err := svc.QuoteBatch(ctx, reqs)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(out, "#%d error: %v\n", res.Index, res.Err)
			continue
		}
		fmt.Fprintf(out, "#%d ", res.Index)
		printQuote(out, res.Quote)
	}

	if flags.outDir != "" {
		path, err := exporter.Export(results, reqs, export.Options{
			Format:      format,
			OutputDir:   flags.outDir,
			SideFilter:  flags.side,
			OnlySuccess: flags.onlyOK,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "report: %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d quotes failed", failed, len(results))
	}
	return nil
}

func runMeta(ctx context.Context, probe *evm.MetadataProbe, flags *commandFlags, out io.Writer) error {
	if !common.IsHexAddress(flags.token) {
		return fmt.Errorf("%w: -token must be a hex address", errUsage)
	}
	md := probe.Metadata(ctx, common.HexToAddress(flags.token))

	fmt.Fprintf(out, "token:    %s\n", md.Token.Hex())
	fmt.Fprintf(out, "decimals: %s\n", found(md.DecimalsFound, fmt.Sprint(md.Decimals)))
	fmt.Fprintf(out, "name:     %s\n", found(md.NameFound, md.Name))
	fmt.Fprintf(out, "symbol:   %s\n", found(md.SymbolFound, md.Symbol))
	return nil
}

func printQuote(out io.Writer, q *swap.Quote) {
	fmt.Fprintf(out, "%s %s %s -> %s %s (fee %d bp)\n",
		q.Side(),
		q.AmountIn.Dec(), label(q.InputSymbol, q.Input().String()),
		q.AmountOut.Dec(), label(q.OutputSymbol, q.Output().String()),
		q.FeeRateBp)
}

func label(symbol, fallback string) string {
	if symbol != "" {
		return symbol
	}
	return fallback
}

func found(ok bool, v string) string {
	if !ok {
		return "<unavailable>"
	}
	return v
}
