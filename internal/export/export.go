// internal/export/export.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/swapvault/internal/swap"
)

// Format is the report file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Options configures a batch report.
type Options struct {
	Format      Format
	OutputDir   string
	SideFilter  string // buy or sell, empty for both
	OnlySuccess bool
}

// Row is one exported quote outcome.
type Row struct {
	Index     int    `json:"index"`
	Side      string `json:"side"`
	TokenA    string `json:"token_a"`
	TokenB    string `json:"token_b"`
	AmountIn  string `json:"amount_in"`
	Price     string `json:"price"`
	AmountOut string `json:"amount_out,omitempty"`
	FeeRateBp uint64 `json:"fee_rate_bp,omitempty"`
	Error     string `json:"error,omitempty"`
}

var csvHeaders = []string{"index", "side", "token_a", "token_b", "amount_in", "price", "amount_out", "fee_rate_bp", "error"}

func (r Row) toCSV() []string {
	fee := ""
	if r.Error == "" {
		fee = strconv.FormatUint(r.FeeRateBp, 10)
	}
	return []string{
		strconv.Itoa(r.Index), r.Side, r.TokenA, r.TokenB,
		r.AmountIn, r.Price, r.AmountOut, fee, r.Error,
	}
}

// Summary counts the exported rows.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	BuyCount  int `json:"buy_count"`
	SellCount int `json:"sell_count"`
}

// QuoteExporter writes batch quote results to disk.
type QuoteExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewQuoteExporter(logger *zap.Logger) *QuoteExporter {
	return &QuoteExporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// Export writes the filtered results and returns the file path.
func (e *QuoteExporter) Export(results []swap.BatchResult, reqs []swap.Request, opts Options) (string, error) {
	rows := e.filterRows(buildRows(results, reqs), opts)
	if len(rows) == 0 {
		return "", fmt.Errorf("no quotes match the export criteria")
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(opts.OutputDir, e.filename(opts))

	var err error
	switch opts.Format {
	case FormatCSV:
		err = writeCSV(rows, outputPath)
	case FormatJSON:
		err = e.writeJSON(rows, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", opts.Format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Quotes exported",
		zap.String("file", outputPath),
		zap.Int("count", len(rows)),
		zap.String("format", string(opts.Format)))

	return outputPath, nil
}

// buildRows pairs each result with its request. Results carry the index of
// the request they came from.
func buildRows(results []swap.BatchResult, reqs []swap.Request) []Row {
	rows := make([]Row, 0, len(results))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(reqs) {
			continue
		}
		req := reqs[res.Index]
		row := Row{
			Index:  res.Index,
			Side:   req.Side(),
			TokenA: req.TokenA.String(),
			TokenB: req.TokenB.String(),
		}
		if req.AmountIn != nil {
			row.AmountIn = req.AmountIn.Dec()
		}
		if req.Price != nil {
			row.Price = req.Price.Dec()
		}
		if res.Err != nil {
			row.Error = res.Err.Error()
		} else if res.Quote != nil {
			row.AmountOut = res.Quote.AmountOut.Dec()
			row.FeeRateBp = res.Quote.FeeRateBp
		}
		rows = append(rows, row)
	}
	return rows
}

func (e *QuoteExporter) filterRows(rows []Row, opts Options) []Row {
	var filtered []Row
	for _, row := range rows {
		if opts.SideFilter != "" && row.Side != opts.SideFilter {
			continue
		}
		if opts.OnlySuccess && row.Error != "" {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func (e *QuoteExporter) filename(opts Options) string {
	prefix := "quotes_all"
	if opts.SideFilter != "" {
		prefix = "quotes_" + opts.SideFilter
	}
	return fmt.Sprintf("%s_%s.%s", prefix, e.now().Format("20060102_150405"), opts.Format)
}

func writeCSV(rows []Row, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.toCSV()); err != nil {
			return fmt.Errorf("failed to write quote: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (e *QuoteExporter) writeJSON(rows []Row, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	report := struct {
		ExportTime time.Time `json:"export_time"`
		Summary    Summary   `json:"summary"`
		Quotes     []Row     `json:"quotes"`
	}{
		ExportTime: e.now().UTC(),
		Summary:    summarize(rows),
		Quotes:     rows,
	}

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func summarize(rows []Row) Summary {
	s := Summary{Total: len(rows)}
	for _, row := range rows {
		if row.Error == "" {
			s.Succeeded++
		} else {
			s.Failed++
		}
		switch row.Side {
		case swap.SideBuy:
			s.BuyCount++
		case swap.SideSell:
			s.SellCount++
		}
	}
	return s
}
