// Package service orchestrates the statement pipeline: decode the uploaded
// bytes, normalize rows into canonical transactions, and hand the result to
// voucher synthesis. Every invocation is a pure, stateless transform over
// its inputs; uploads may be processed concurrently.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
	"github.com/bmehta/tally-bridge/internal/domain/statement/decoder"
	"github.com/bmehta/tally-bridge/internal/domain/statement/normalizer"
	"github.com/bmehta/tally-bridge/internal/domain/statement/pdftext"
)

// ParseResult is the outcome of parsing one uploaded statement file.
type ParseResult struct {
	Transactions []statement.Transaction
	// PDFSource marks transactions recovered heuristically from PDF text.
	// These are low confidence and should be posted through the suspense
	// ledger, not the categorized path.
	PDFSource bool
	// OCRUsed reports that the optical fallback ran.
	OCRUsed bool
	// RowsDropped counts source rows that did not survive normalization.
	RowsDropped int
}

// Service is the pipeline entry point.
type Service struct {
	decoder *decoder.Decoder
	pdfCfg  pdftext.Config
	logger  *slog.Logger
}

// New creates the statement service.
func New(dec *decoder.Decoder, logger *slog.Logger) *Service {
	return &Service{
		decoder: dec,
		pdfCfg:  pdftext.DefaultConfig(),
		logger:  logger,
	}
}

// WithPDFConfig overrides the PDF extraction heuristics.
func (s *Service) WithPDFConfig(cfg pdftext.Config) *Service {
	s.pdfCfg = cfg
	return s
}

// SupportedBanks lists the bank formats the normalizer registry knows.
func (s *Service) SupportedBanks() []normalizer.Bank {
	return normalizer.SupportedBanks()
}

// ParseFile decodes data according to its declared extension and normalizes
// it into canonical transactions using the bank's column mapping (or the
// generic fallback for unknown codes). Returns
// statement.ErrNoTransactionsFound when zero transactions survive.
func (s *Service) ParseFile(ctx context.Context, data []byte, ext, bankCode string) (*ParseResult, error) {
	decoded, err := s.decoder.Decode(ctx, data, ext)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bank statement: %w", err)
	}
	filesParsed.WithLabelValues(ext).Inc()

	result := &ParseResult{OCRUsed: decoded.OCRUsed}
	var sourceRows int

	if decoded.Records != nil {
		sourceRows = len(decoded.Records)
		result.Transactions = normalizer.Normalize(decoded.Records, bankCode)
	} else {
		result.PDFSource = true
		if decoded.OCRUsed {
			ocrFallbacks.Inc()
		}
		extracted := pdftext.Extract(decoded.Text, s.pdfCfg)
		sourceRows = len(extracted)
		result.Transactions = canonicalizePDF(extracted)
	}

	result.RowsDropped = sourceRows - len(result.Transactions)
	rowsDropped.Add(float64(result.RowsDropped))
	transactionsParsed.Add(float64(len(result.Transactions)))

	s.logger.Info("parsed bank statement",
		slog.String("format", ext),
		slog.String("bank", bankCode),
		slog.Int("rows", sourceRows),
		slog.Int("transactions", len(result.Transactions)),
		slog.Bool("ocr", decoded.OCRUsed))

	if len(result.Transactions) == 0 {
		return nil, statement.ErrNoTransactionsFound
	}
	return result, nil
}

// canonicalizePDF routes the raw matched date strings of PDF-derived
// transactions through the date normalizer and drops rows that fail it.
// Zero-amount rows never appear here; the extractor skips lines without a
// positive numeric token.
func canonicalizePDF(txns []statement.Transaction) []statement.Transaction {
	out := make([]statement.Transaction, 0, len(txns))
	for _, tx := range txns {
		tx.Date = normalizer.NormalizeDate(tx.Date)
		if tx.Date == "" {
			continue
		}
		out = append(out, tx)
	}
	return out
}
