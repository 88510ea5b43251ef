// ====================================
// File: cmd/swapvault/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/swapvault/internal/blockchain/evm"
	"github.com/rovshanmuradov/swapvault/internal/config"
	"github.com/rovshanmuradov/swapvault/internal/export"
	"github.com/rovshanmuradov/swapvault/internal/pricing"
	"github.com/rovshanmuradov/swapvault/internal/settlement"
	"github.com/rovshanmuradov/swapvault/internal/swap"
	"github.com/rovshanmuradov/swapvault/internal/utils/logger"
	"github.com/rovshanmuradov/swapvault/internal/utils/metrics"
)

const usage = `usage: swapvault <command> [flags]

commands:
  quote   price a swap
  settle  quote and simulate settlement against the executor
  batch   price every request in a JSON file
  meta    probe a token's decimals, name and symbol
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// commandFlags holds every flag any subcommand accepts.
type commandFlags struct {
	configPath  string
	metricsFile string
	input       requestInput
	user        string
	value       string
	file        string
	outDir      string
	format      string
	side        string
	onlyOK      bool
	token       string
}

func parseFlags(command string, args []string) (*commandFlags, error) {
	f := &commandFlags{}
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "configs/config.json", "path to the config file")

	switch command {
	case "quote", "settle":
		fs.StringVar(&f.input.Side, "side", swap.SideBuy, "buy or sell")
		fs.StringVar(&f.input.TokenA, "a", "", "token A: hex address or \"native\"")
		fs.StringVar(&f.input.TokenB, "b", "", "reference token B: hex address or \"native\"")
		fs.StringVar(&f.input.AmountIn, "amount", "", "input amount in base units")
		fs.StringVar(&f.input.Price, "price", "", "price scaled to token B decimals")
		fs.StringVar(&f.metricsFile, "metrics", "", "write quote and transfer metrics to this file")
		if command == "settle" {
			fs.StringVar(&f.user, "user", "", "counterparty address")
			fs.StringVar(&f.value, "value", "0", "native value attached to the call")
		}
	case "batch":
		fs.StringVar(&f.file, "file", "", "JSON file with an array of requests")
		fs.StringVar(&f.outDir, "out", "", "directory for a report file; empty prints only")
		fs.StringVar(&f.format, "format", string(export.FormatCSV), "report format: csv or json")
		fs.StringVar(&f.side, "side", "", "export only buy or sell quotes")
		fs.BoolVar(&f.onlyOK, "only-success", false, "export only successful quotes")
		fs.StringVar(&f.metricsFile, "metrics", "", "write quote and transfer metrics to this file")
	case "meta":
		fs.StringVar(&f.token, "token", "", "token address")
	default:
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return f, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	command := args[0]
	flags, err := parseFlags(command, args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	opLog := log.WithOperation(command)
	defer logger.TrackPerformance(opLog)()

	client, err := evm.Dial(ctx, evm.DialOptions{
		URL:      cfg.RPCURL,
		Executor: cfg.ExecutorAddress(),
		ChainID:  cfg.ChainID,
		Retries:  cfg.Retries,
		Timeout:  time.Duration(cfg.DialTimeoutMs) * time.Millisecond,
	}, opLog)
	if err != nil {
		return err
	}
	defer client.Close()

	probe := evm.NewMetadataProbe(client, opLog)

	if command == "meta" {
		return runMeta(ctx, probe, flags, out)
	}

	converter, err := pricing.NewConverter(probe, pricing.Config{
		FeeRateBp:      cfg.FeeRateBp,
		NativeDecimals: cfg.NativeDecimals,
	}, opLog)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	svc, err := swap.NewService(&swap.ServiceConfig{
		Converter:  converter,
		Transferer: settlement.NewTransferer(client, client.Self(), opLog),
		Symbols:    probe,
		Metrics:    collector,
		Workers:    cfg.Workers,
		Logger:     opLog,
	})
	if err != nil {
		return err
	}

	switch command {
	case "quote":
		err = runQuote(ctx, svc, flags, out)
	case "settle":
		err = runSettle(ctx, svc, flags, out, opLog)
	case "batch":
		err = runBatch(ctx, svc, export.NewQuoteExporter(opLog), flags, out)
	}

	// Failed runs are written too: their failure series are the interesting ones.
	if flags.metricsFile != "" {
		if werr := collector.WriteToTextfile(flags.metricsFile); werr != nil {
			opLog.Error("Failed to write metrics", zap.String("file", flags.metricsFile), zap.Error(werr))
			err = errors.Join(err, werr)
		}
	}
	return err
}
