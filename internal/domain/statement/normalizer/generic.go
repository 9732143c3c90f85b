package normalizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
)

// Column discovery keyword tables for the generic normalizer. A field name
// containing any keyword (case-insensitive) is treated as that semantic
// column; keywords are tried in order, so the more specific names win over
// short suffixes like "dr"/"cr". Keeping these as data makes new heuristics
// additive.
var (
	dateColumnKeywords    = []string{"date", "txn", "transaction"}
	descColumnKeywords    = []string{"desc", "narration", "particulars", "remarks"}
	debitColumnKeywords   = []string{"debit", "withdrawal", "dr"}
	creditColumnKeywords  = []string{"credit", "deposit", "cr"}
	balanceColumnKeywords = []string{"balance"}
)

// normalizeGeneric handles arbitrary, previously-unseen layouts by
// discovering the date, description, debit, credit and balance columns from
// the record's field names. Rows without a date-like column, and rows where
// both amounts resolve to zero, are dropped.
func normalizeGeneric(row statement.RawRecord) *statement.Transaction {
	fields := sortedFields(row)

	dateField, ok := findColumn(fields, dateColumnKeywords)
	if !ok {
		return nil
	}
	descField, _ := findColumn(fields, descColumnKeywords)
	debitField, _ := findColumn(fields, debitColumnKeywords)
	creditField, _ := findColumn(fields, creditColumnKeywords)
	balanceField, _ := findColumn(fields, balanceColumnKeywords)

	debit := amountValue(row, debitField)
	credit := amountValue(row, creditField)
	if debit.IsZero() && credit.IsZero() {
		return nil
	}

	return build(buildParams{
		date:        NormalizeDate(row[dateField]),
		description: stringValue(row, statement.DefaultDescription, descField),
		debit:       debit,
		credit:      credit,
		balance:     amountValue(row, balanceField),
		raw:         row,
	})
}

// sortedFields returns the record's field names in a deterministic order.
func sortedFields(row statement.RawRecord) []string {
	fields := make([]string, 0, len(row))
	for name := range row {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// findColumn returns the first field whose name contains a keyword, scanning
// keywords in priority order.
func findColumn(fields []string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		for _, name := range fields {
			if strings.Contains(strings.ToLower(name), kw) {
				return name, true
			}
		}
	}
	return "", false
}

// firstValue returns the first non-empty value among the named fields.
func firstValue(row statement.RawRecord, fields ...string) any {
	for _, name := range fields {
		if name == "" {
			continue
		}
		v, ok := row[name]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// stringValue resolves the first non-empty field as text, falling back to a
// default label.
func stringValue(row statement.RawRecord, fallback string, fields ...string) string {
	v := firstValue(row, fields...)
	if v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return fallback
	}
	return s
}

// amountValue resolves the first named field as a non-negative decimal.
// Unparseable values count as zero, per the leniency policy: individual bad
// cells drop the row later rather than failing the file.
func amountValue(row statement.RawRecord, fields ...string) decimal.Decimal {
	v := firstValue(row, fields...)
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(n).Abs()
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero
		}
		return d.Abs()
	default:
		return decimal.Zero
	}
}
