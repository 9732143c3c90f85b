// Package normalizer converts raw statement records into canonical
// transactions. A fixed registry holds one column-mapping strategy per known
// bank export layout plus a generic fallback that discovers columns by
// naming convention.
package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
)

// Func converts one raw record into a canonical transaction, or nil when the
// row carries no usable transaction.
type Func func(statement.RawRecord) *statement.Transaction

// GenericCode routes explicitly to the fallback normalizer. Unknown bank
// codes take the same path.
const GenericCode = "generic"

// registry is fixed at startup and read-only afterwards.
var registry = map[string]Func{
	"hdfc":      normalizeHDFC,
	"icici":     normalizeICICI,
	"sbi":       normalizeSBI,
	"axis":      normalizeAxis,
	GenericCode: normalizeGeneric,
}

func init() {
	for code, fn := range registry {
		if fn == nil {
			panic("normalizer: nil entry for bank code " + code)
		}
	}
}

// Bank describes one supported statement layout.
type Bank struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Formats []string `json:"formats"`
}

// SupportedBanks lists the registered layouts in a stable order.
func SupportedBanks() []Bank {
	return []Bank{
		{Code: "hdfc", Name: "HDFC Bank", Formats: []string{"CSV", "Excel"}},
		{Code: "icici", Name: "ICICI Bank", Formats: []string{"CSV", "Excel"}},
		{Code: "sbi", Name: "State Bank of India", Formats: []string{"CSV", "Excel"}},
		{Code: "axis", Name: "Axis Bank", Formats: []string{"CSV", "Excel"}},
		{Code: GenericCode, Name: "Generic Format", Formats: []string{"CSV", "Excel", "JSON"}},
	}
}

// Normalize converts records using the strategy registered for bankCode,
// dropping rows the strategy rejects, rows without a parseable date, and
// rows where both debit and credit resolve to zero. The two last conditions
// guarantee that no zero-amount or dateless transaction ever reaches voucher
// synthesis.
func Normalize(records []statement.RawRecord, bankCode string) []statement.Transaction {
	fn := forBank(bankCode)

	out := make([]statement.Transaction, 0, len(records))
	for _, record := range records {
		tx := fn(record)
		if tx == nil {
			continue
		}
		if tx.Date == "" {
			continue
		}
		if tx.Debit.IsZero() && tx.Credit.IsZero() {
			continue
		}
		out = append(out, *tx)
	}
	return out
}

func forBank(code string) Func {
	if fn, ok := registry[strings.ToLower(code)]; ok {
		return fn
	}
	return registry[GenericCode]
}

func normalizeHDFC(row statement.RawRecord) *statement.Transaction {
	debit := amountValue(row, "Withdrawal Amt.", "Debit")
	credit := amountValue(row, "Deposit Amt.", "Credit")
	return build(buildParams{
		date:        NormalizeDate(firstValue(row, "Date", "Transaction Date")),
		description: stringValue(row, "HDFC Transaction", "Narration", "Description"),
		debit:       debit,
		credit:      credit,
		balance:     amountValue(row, "Balance"),
		chequeNo:    stringValue(row, "", "Chq./Ref.No."),
		raw:         row,
	})
}

func normalizeICICI(row statement.RawRecord) *statement.Transaction {
	return build(buildParams{
		date:        NormalizeDate(firstValue(row, "Transaction Date", "Value Date")),
		description: stringValue(row, "ICICI Transaction", "Transaction Remarks", "Description"),
		debit:       amountValue(row, "Withdrawal Amount (INR )", "Debit"),
		credit:      amountValue(row, "Deposit Amount (INR )", "Credit"),
		balance:     amountValue(row, "Balance (INR )", "Balance"),
		raw:         row,
	})
}

func normalizeSBI(row statement.RawRecord) *statement.Transaction {
	return build(buildParams{
		date:        NormalizeDate(firstValue(row, "Txn Date", "Transaction Date")),
		description: stringValue(row, "SBI Transaction", "Description", "Narration"),
		debit:       amountValue(row, "Debit"),
		credit:      amountValue(row, "Credit"),
		balance:     amountValue(row, "Balance"),
		raw:         row,
	})
}

func normalizeAxis(row statement.RawRecord) *statement.Transaction {
	return build(buildParams{
		date:        NormalizeDate(firstValue(row, "Tran Date", "Transaction Date")),
		description: stringValue(row, "Axis Transaction", "Particulars", "Description"),
		debit:       amountValue(row, "Dr Amount", "Debit"),
		credit:      amountValue(row, "Cr Amount", "Credit"),
		balance:     amountValue(row, "Balance"),
		chequeNo:    stringValue(row, "", "Chq No"),
		raw:         row,
	})
}

type buildParams struct {
	date        string
	description string
	debit       decimal.Decimal
	credit      decimal.Decimal
	balance     decimal.Decimal
	chequeNo    string
	raw         statement.RawRecord
}

// build assembles a canonical transaction from resolved fields. Amount is
// the larger of debit/credit; the transaction type follows the debit sign.
func build(p buildParams) *statement.Transaction {
	txType := statement.TypeReceipt
	if p.debit.IsPositive() {
		txType = statement.TypePayment
	}
	return &statement.Transaction{
		Date:            p.date,
		Description:     p.description,
		Debit:           p.debit,
		Credit:          p.credit,
		Amount:          decimal.Max(p.debit, p.credit),
		Balance:         p.balance,
		TransactionType: txType,
		ChequeNo:        p.chequeNo,
		RawData:         p.raw,
	}
}
