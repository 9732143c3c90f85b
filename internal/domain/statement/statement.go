// Package statement defines the shared data model for the bank-statement
// ingestion pipeline: raw decoded records and the canonical, bank-agnostic
// transaction every downstream stage operates on.
package statement

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Transaction types, matching the voucher types of the target ledger system.
const (
	TypePayment = "Payment"
	TypeReceipt = "Receipt"
)

// DefaultDescription is used when a source row carries no description column.
const DefaultDescription = "Bank Transaction"

var (
	// ErrUnsupportedFormat is returned for file extensions the decoder does not handle.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrOCRInsufficientText is returned when optical recognition could not recover
	// enough text from a scanned document to attempt extraction.
	ErrOCRInsufficientText = errors.New("optical recognition produced insufficient text: supply a higher-quality scan or a text-native file")

	// ErrNoTransactionsFound is returned when zero transactions survive normalization.
	ErrNoTransactionsFound = errors.New("no transactions found in statement")

	// ErrDecodeFailed wraps structural decode failures in an otherwise
	// supported format, such as malformed CSV, Excel or JSON content.
	ErrDecodeFailed = errors.New("failed to decode statement file")
)

// RawRecord is one decoded row of a tabular or JSON source, keyed by the
// original column name (case preserved). Values are strings, float64 numbers,
// or nil for empty cells. Records are ephemeral: they live only for the
// duration of normalizing a single file.
type RawRecord map[string]any

// Transaction is the canonical form of one statement line. Exactly one of
// Debit/Credit is expected to be nonzero for a well-formed row; rows where
// both are zero are dropped during normalization and never reach voucher
// synthesis.
type Transaction struct {
	// Date is the canonical 8-digit YYYYMMDD form; empty if the source date
	// could not be parsed. Rows with an empty date are dropped before
	// voucher synthesis.
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	// Amount is the nonzero one of Debit/Credit (their max).
	Amount decimal.Decimal `json:"amount"`
	// Balance is the running account balance when the source provides one.
	// Informational only; never used in voucher construction.
	Balance         decimal.Decimal `json:"balance"`
	TransactionType string          `json:"transactionType"`
	ChequeNo        string          `json:"chequeNo,omitempty"`
	// LowConfidence marks transactions recovered heuristically from PDF text.
	// Callers should route these through the suspense voucher path.
	LowConfidence bool `json:"lowConfidence,omitempty"`
	// RawData retains the originating record for diagnostics.
	RawData RawRecord `json:"rawData,omitempty"`
}

// IsPayment reports whether the transaction moves money out of the account.
func (t Transaction) IsPayment() bool {
	return t.Debit.IsPositive()
}
