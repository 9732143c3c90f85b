// Package voucher synthesizes balanced double-entry ledger vouchers from
// canonical transactions. Every voucher carries exactly two legs posting the
// identical amount, so each voucher balances by construction.
package voucher

import (
	"github.com/shopspring/decimal"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
	"github.com/bmehta/tally-bridge/internal/domain/statement/categorizer"
)

// Voucher types understood by the target ledger system.
const (
	TypePayment = "Payment"
	TypeReceipt = "Receipt"
	TypeJournal = "Journal"
)

// IsDeemedPositive values, the target system's sign convention: "No" marks a
// debit leg, "Yes" a credit leg.
const (
	DebitLeg  = "No"
	CreditLeg = "Yes"
)

// Metadata sources stamped on synthesized vouchers.
const (
	SourceBankStatement = "bank_statement"
	SourcePDFStatement  = "pdf_statement"
)

// Ledger name defaults, matching the configuration fallbacks of the web form.
const (
	DefaultBankLedger     = "Bank Account"
	DefaultExpenseLedger  = "Miscellaneous Expenses"
	DefaultIncomeLedger   = "Miscellaneous Income"
	DefaultSuspenseLedger = "Suspense Account"
)

// LedgerEntry is one leg of a voucher.
type LedgerEntry struct {
	LedgerName       string          `json:"ledgerName"`
	Amount           decimal.Decimal `json:"amount"`
	IsDeemedPositive string          `json:"isDeemedPositive"`
}

// Metadata records where a voucher came from, for audit and debugging.
type Metadata struct {
	Source          string          `json:"source"`
	Category        string          `json:"category,omitempty"`
	OriginalBalance decimal.Decimal `json:"originalBalance"`
}

// Voucher is a two-leg double-entry record ready for submission. MasterID,
// GUID and VoucherNumber are populated only when altering an existing
// voucher fetched back from the ledger system.
type Voucher struct {
	VoucherType   string        `json:"voucherType"`
	Date          string        `json:"date"`
	Narration     string        `json:"narration"`
	CompanyName   string        `json:"companyName"`
	VoucherNumber string        `json:"voucherNumber,omitempty"`
	MasterID      string        `json:"masterID,omitempty"`
	GUID          string        `json:"guid,omitempty"`
	LedgerEntries []LedgerEntry `json:"ledgerEntries"`
	Metadata      Metadata      `json:"metadata"`
}

// Options configures categorized voucher synthesis.
type Options struct {
	CompanyName          string
	BankLedgerName       string
	DefaultExpenseLedger string
	DefaultIncomeLedger  string
	AutoCategorize       bool
}

// SuspenseOptions configures suspense voucher synthesis for low-confidence
// transactions where categorization is not attempted.
type SuspenseOptions struct {
	CompanyName    string
	BankLedgerName string
	SuspenseLedger string
}

// ConvertToVouchers builds one voucher per transaction. Debit transactions
// become Payment vouchers debiting the category (or default expense) ledger
// and crediting the bank ledger; credit transactions mirror that as Receipt
// vouchers. When AutoCategorize is on, a non-Miscellaneous category match
// replaces the default ledger.
func ConvertToVouchers(txns []statement.Transaction, opts Options) []Voucher {
	if opts.BankLedgerName == "" {
		opts.BankLedgerName = DefaultBankLedger
	}
	if opts.DefaultExpenseLedger == "" {
		opts.DefaultExpenseLedger = DefaultExpenseLedger
	}
	if opts.DefaultIncomeLedger == "" {
		opts.DefaultIncomeLedger = DefaultIncomeLedger
	}

	vouchers := make([]Voucher, 0, len(txns))
	for _, txn := range txns {
		isDebit := txn.IsPayment()

		ledgerName := opts.DefaultIncomeLedger
		if isDebit {
			ledgerName = opts.DefaultExpenseLedger
		}
		meta := Metadata{Source: SourceBankStatement, OriginalBalance: txn.Balance}
		if opts.AutoCategorize {
			category := categorizer.Categorize(txn.Description)
			meta.Category = category
			if category != categorizer.Miscellaneous {
				ledgerName = category
			}
		}

		vouchers = append(vouchers, makeVoucher(txn, opts.CompanyName, ledgerName, opts.BankLedgerName, meta))
	}
	return vouchers
}

// ConvertToSuspenseVouchers builds vouchers with the same leg structure but
// posts the non-bank leg to a single configured suspense ledger.
func ConvertToSuspenseVouchers(txns []statement.Transaction, opts SuspenseOptions) []Voucher {
	if opts.BankLedgerName == "" {
		opts.BankLedgerName = DefaultBankLedger
	}
	if opts.SuspenseLedger == "" {
		opts.SuspenseLedger = DefaultSuspenseLedger
	}

	vouchers := make([]Voucher, 0, len(txns))
	for _, txn := range txns {
		meta := Metadata{Source: SourcePDFStatement, OriginalBalance: txn.Balance}
		vouchers = append(vouchers, makeVoucher(txn, opts.CompanyName, opts.SuspenseLedger, opts.BankLedgerName, meta))
	}
	return vouchers
}

// makeVoucher assembles the two legs. For a debit transaction the category
// ledger is debited and the bank ledger credited; for a credit transaction
// the legs mirror.
func makeVoucher(txn statement.Transaction, company, categoryLedger, bankLedger string, meta Metadata) Voucher {
	isDebit := txn.IsPayment()

	voucherType := TypeReceipt
	debitLedger, creditLedger := bankLedger, categoryLedger
	if isDebit {
		voucherType = TypePayment
		debitLedger, creditLedger = categoryLedger, bankLedger
	}

	return Voucher{
		VoucherType: voucherType,
		Date:        txn.Date,
		Narration:   txn.Description,
		CompanyName: company,
		LedgerEntries: []LedgerEntry{
			{LedgerName: debitLedger, Amount: txn.Amount, IsDeemedPositive: DebitLeg},
			{LedgerName: creditLedger, Amount: txn.Amount, IsDeemedPositive: CreditLeg},
		},
		Metadata: meta,
	}
}
