// Package transfer moves amounts between ledgers in the external ledger
// system, either by creating journal vouchers or by re-pointing the legs of
// existing vouchers.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bmehta/tally-bridge/internal/domain/statement/voucher"
	"github.com/bmehta/tally-bridge/internal/tally"
)

// ValidationError is a request the caller can correct; the HTTP layer maps
// it to a 400 response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

var (
	ErrSameLedger    = &ValidationError{"from ledger and to ledger cannot be the same"}
	ErrMissingFields = &ValidationError{"company name, from ledger, and to ledger are required"}
)

// LedgerClient is what the service needs from the ledger system.
type LedgerClient interface {
	CreateVoucher(ctx context.Context, v voucher.Voucher) error
	AlterVoucher(ctx context.Context, companyName string, v voucher.Voucher) error
	LedgerEntries(ctx context.Context, companyName, ledgerName, fromDate, toDate string) ([]tally.LedgerVoucher, error)
}

// Service performs ledger-to-ledger transfers.
type Service struct {
	client LedgerClient
	logger *slog.Logger
	now    func() time.Time
}

func NewService(client LedgerClient, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger, now: time.Now}
}

// Request is one journal transfer between two ledgers.
type Request struct {
	CompanyName string          `json:"companyName"`
	FromLedger  string          `json:"fromLedger"`
	ToLedger    string          `json:"toLedger"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Narration   string          `json:"narration"`
}

func (r Request) validate() error {
	if r.CompanyName == "" || r.FromLedger == "" || r.ToLedger == "" {
		return ErrMissingFields
	}
	if r.FromLedger == r.ToLedger {
		return ErrSameLedger
	}
	if !r.Amount.IsPositive() {
		return &ValidationError{"amount must be positive"}
	}
	if r.Date == "" {
		return &ValidationError{"date is required"}
	}
	return nil
}

// CreateEntry creates one journal voucher moving Amount from FromLedger to
// ToLedger. The receiving ledger takes the debit leg.
func (s *Service) CreateEntry(ctx context.Context, req Request) (voucher.Voucher, error) {
	if err := req.validate(); err != nil {
		return voucher.Voucher{}, err
	}

	narration := req.Narration
	if narration == "" {
		narration = fmt.Sprintf("Transfer from %s to %s", req.FromLedger, req.ToLedger)
	}

	v := voucher.Voucher{
		VoucherType: voucher.TypeJournal,
		Date:        req.Date,
		Narration:   narration,
		CompanyName: req.CompanyName,
		LedgerEntries: []voucher.LedgerEntry{
			{LedgerName: req.ToLedger, Amount: req.Amount, IsDeemedPositive: voucher.DebitLeg},
			{LedgerName: req.FromLedger, Amount: req.Amount, IsDeemedPositive: voucher.CreditLeg},
		},
	}
	if err := s.client.CreateVoucher(ctx, v); err != nil {
		return voucher.Voucher{}, fmt.Errorf("creating transfer entry: %w", err)
	}
	s.logger.Info("transfer entry created",
		slog.String("company", req.CompanyName),
		slog.String("from", req.FromLedger),
		slog.String("to", req.ToLedger),
		slog.String("amount", req.Amount.String()))
	return v, nil
}

// BulkItem is one transfer within a bulk request.
type BulkItem struct {
	FromLedger string          `json:"fromLedger"`
	ToLedger   string          `json:"toLedger"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	Narration  string          `json:"narration"`
}

// BulkResult records one item's outcome.
type BulkResult struct {
	Index    int      `json:"index"`
	Success  bool     `json:"success"`
	Transfer BulkItem `json:"transfer"`
	Error    string   `json:"error,omitempty"`
}

// BulkReport summarizes a bulk transfer.
type BulkReport struct {
	Results []BulkResult `json:"results"`
	Errors  []BulkResult `json:"errors"`
	Summary BulkSummary  `json:"summary"`
}

type BulkSummary struct {
	Total       int    `json:"total"`
	Successful  int    `json:"successful"`
	Failed      int    `json:"failed"`
	SuccessRate string `json:"successRate"`
}

// Bulk creates one journal voucher per item. A failed item does not abort
// the batch.
func (s *Service) Bulk(ctx context.Context, companyName string, items []BulkItem) (*BulkReport, error) {
	if companyName == "" || len(items) == 0 {
		return nil, &ValidationError{"company name and transfers array are required"}
	}

	report := &BulkReport{Results: []BulkResult{}, Errors: []BulkResult{}}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		_, err := s.CreateEntry(ctx, Request{
			CompanyName: companyName,
			FromLedger:  item.FromLedger,
			ToLedger:    item.ToLedger,
			Amount:      item.Amount,
			Date:        item.Date,
			Narration:   item.Narration,
		})
		if err != nil {
			report.Errors = append(report.Errors, BulkResult{Index: i, Transfer: item, Error: err.Error()})
			continue
		}
		report.Results = append(report.Results, BulkResult{Index: i, Success: true, Transfer: item})
	}

	report.Summary = BulkSummary{
		Total:       len(items),
		Successful:  len(report.Results),
		Failed:      len(report.Errors),
		SuccessRate: fmt.Sprintf("%.2f%%", float64(len(report.Results))/float64(len(items))*100),
	}
	return report, nil
}

// EntriesResult is the outcome of a ledger entries lookup.
type EntriesResult struct {
	LedgerName string               `json:"ledgerName"`
	FromDate   string               `json:"fromDate"`
	ToDate     string               `json:"toDate"`
	Count      int                  `json:"count"`
	Entries    []tally.LedgerVoucher `json:"entries"`
}

// Entries lists the vouchers involving a ledger. Empty date bounds default
// to the current calendar year.
func (s *Service) Entries(ctx context.Context, companyName, ledgerName, fromDate, toDate string) (*EntriesResult, error) {
	if companyName == "" || ledgerName == "" {
		return nil, &ValidationError{"company name and ledger name are required"}
	}
	year := s.now().Year()
	if fromDate == "" {
		fromDate = fmt.Sprintf("%d0101", year)
	}
	if toDate == "" {
		toDate = fmt.Sprintf("%d1231", year)
	}

	entries, err := s.client.LedgerEntries(ctx, companyName, ledgerName, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("fetching ledger entries: %w", err)
	}
	if entries == nil {
		entries = []tally.LedgerVoucher{}
	}
	return &EntriesResult{
		LedgerName: ledgerName,
		FromDate:   fromDate,
		ToDate:     toDate,
		Count:      len(entries),
		Entries:    entries,
	}, nil
}

// MoveResult records one altered voucher in a MoveEntries batch.
type MoveResult struct {
	Index         int    `json:"index"`
	Success       bool   `json:"success"`
	VoucherNumber string `json:"voucherNumber"`
	Date          string `json:"date"`
	Error         string `json:"error,omitempty"`
}

// MoveReport summarizes a MoveEntries batch.
type MoveReport struct {
	FromLedger string       `json:"fromLedger"`
	ToLedger   string       `json:"toLedger"`
	Results    []MoveResult `json:"results"`
	Errors     []MoveResult `json:"errors"`
	Summary    MoveSummary  `json:"summary"`
}

type MoveSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// MoveEntries rewrites the selected vouchers so that every leg posted to
// fromLedger points at toLedger instead. Ledger names compare
// case-insensitively; amounts and signs are untouched, so the vouchers stay
// balanced.
func (s *Service) MoveEntries(ctx context.Context, companyName, fromLedger, toLedger string, selected []tally.LedgerVoucher) (*MoveReport, error) {
	if companyName == "" || fromLedger == "" || toLedger == "" || len(selected) == 0 {
		return nil, &ValidationError{"company name, from ledger, to ledger, and selected entries are required"}
	}
	if fromLedger == toLedger {
		return nil, ErrSameLedger
	}

	report := &MoveReport{FromLedger: fromLedger, ToLedger: toLedger, Results: []MoveResult{}, Errors: []MoveResult{}}
	for i, entry := range selected {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		legs := make([]voucher.LedgerEntry, 0, len(entry.AllLedgerEntries))
		for _, le := range entry.AllLedgerEntries {
			name := le.LedgerName
			if strings.EqualFold(name, fromLedger) {
				name = toLedger
			}
			legs = append(legs, voucher.LedgerEntry{
				LedgerName:       name,
				Amount:           le.Amount,
				IsDeemedPositive: le.IsDeemedPositive,
			})
		}

		v := voucher.Voucher{
			VoucherType:   entry.VoucherType,
			Date:          entry.Date,
			Narration:     entry.Narration,
			VoucherNumber: entry.VoucherNumber,
			MasterID:      entry.MasterID,
			GUID:          entry.GUID,
			CompanyName:   companyName,
			LedgerEntries: legs,
		}
		if err := s.client.AlterVoucher(ctx, companyName, v); err != nil {
			report.Errors = append(report.Errors, MoveResult{
				Index: i, VoucherNumber: entry.VoucherNumber, Date: entry.Date, Error: err.Error(),
			})
			continue
		}
		report.Results = append(report.Results, MoveResult{
			Index: i, Success: true, VoucherNumber: entry.VoucherNumber, Date: entry.Date,
		})
	}

	report.Summary = MoveSummary{
		Total:      len(selected),
		Successful: len(report.Results),
		Failed:     len(report.Errors),
	}
	s.logger.Info("ledger entries moved",
		slog.String("from", fromLedger),
		slog.String("to", toLedger),
		slog.Int("successful", report.Summary.Successful),
		slog.Int("failed", report.Summary.Failed))
	return report, nil
}
