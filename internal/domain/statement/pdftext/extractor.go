// Package pdftext heuristically recovers transactions from unstructured PDF
// statement text. Statement layouts are not standardized, so this is a
// best-effort extractor: it keys on date patterns and numeric tokens and
// marks everything it produces as low confidence, to be posted through the
// suspense ledger rather than the categorized path.
package pdftext

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
)

var (
	// numericDatePattern matches DD/MM/YYYY and DD-MM-YYYY.
	numericDatePattern = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{4}`)

	// monthDatePattern matches DD Mon YYYY, in any case (OCR output is
	// frequently all caps).
	monthDatePattern = regexp.MustCompile(`(?i)\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4}`)

	// amountPattern matches numeric tokens, treating embedded thousands
	// separators as non-significant. The separator alternative requires at
	// least one comma group; otherwise leftmost-first alternation would
	// split a plain 4+ digit amount like 4500 into 450 and 0.
	amountPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
)

// Config controls the debit/credit inference heuristics. The defaults encode
// the common statement conventions; both rules are overridable because
// neither is universal.
type Config struct {
	// DebitHints are literal substrings (lower case) whose presence marks a
	// line as a debit.
	DebitHints []string
	// TripleColumnDebit treats a line with exactly three numeric tokens as a
	// debit, a common amount/debit-column/balance-column layout.
	TripleColumnDebit bool
}

// DefaultConfig returns the observed statement conventions.
func DefaultConfig() Config {
	return Config{
		DebitHints:        []string{"dr", "debit", "withdrawal"},
		TripleColumnDebit: true,
	}
}

// Extract parses non-empty lines of recovered PDF text into transaction
// records. The Date field holds the raw matched date string; callers
// canonicalize it (and drop unparseable rows) before voucher synthesis.
func Extract(text string, cfg Config) []statement.Transaction {
	var out []statement.Transaction

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if tx, ok := parseLine(line, cfg); ok {
			out = append(out, tx)
		}
	}
	return out
}

// parseLine extracts one transaction from a line, or reports that the line
// is not a transaction.
func parseLine(line string, cfg Config) (statement.Transaction, bool) {
	loc := numericDatePattern.FindStringIndex(line)
	if loc == nil {
		loc = monthDatePattern.FindStringIndex(line)
	}
	if loc == nil {
		return statement.Transaction{}, false
	}
	rawDate := line[loc[0]:loc[1]]
	rest := line[loc[1]:]

	tokenLocs := amountPattern.FindAllStringIndex(rest, -1)
	if len(tokenLocs) == 0 {
		return statement.Transaction{}, false
	}
	// The description ends at the first numeric token even when that token
	// is zero-valued and skipped below.
	firstTokenStart := tokenLocs[0][0]
	var amounts []decimal.Decimal
	for _, tl := range tokenLocs {
		token := strings.ReplaceAll(rest[tl[0]:tl[1]], ",", "")
		val, err := decimal.NewFromString(token)
		if err != nil || !val.IsPositive() {
			continue
		}
		amounts = append(amounts, val)
	}
	if len(amounts) == 0 {
		return statement.Transaction{}, false
	}

	description := strings.TrimSpace(rest[:firstTokenStart])
	if description == "" {
		description = statement.DefaultDescription
	}

	amount := amounts[0]
	balance := decimal.Zero
	if len(amounts) > 1 {
		balance = amounts[len(amounts)-1]
	}

	tx := statement.Transaction{
		Date:          rawDate,
		Description:   description,
		Amount:        amount,
		Balance:       balance,
		LowConfidence: true,
		RawData:       statement.RawRecord{"line": line},
	}
	if isDebit(line, len(amounts), cfg) {
		tx.Debit = amount
		tx.TransactionType = statement.TypePayment
	} else {
		tx.Credit = amount
		tx.TransactionType = statement.TypeReceipt
	}
	return tx, true
}

// isDebit applies the configured heuristics: a debit hint substring, or the
// three-numeric-token column convention.
func isDebit(line string, tokenCount int, cfg Config) bool {
	lower := strings.ToLower(line)
	for _, hint := range cfg.DebitHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return cfg.TripleColumnDebit && tokenCount == 3
}
