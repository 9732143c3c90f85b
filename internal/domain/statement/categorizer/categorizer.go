// Package categorizer maps free-text transaction descriptions to expense and
// income categories via a fixed, ordered keyword table. The table is
// compiled once at process start into an Aho-Corasick matcher, so every
// description is scanned in a single pass regardless of keyword count.
package categorizer

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Miscellaneous is returned when no keyword matches.
const Miscellaneous = "Miscellaneous"

// Category pairs a name with the keywords that select it.
type Category struct {
	Name     string
	Keywords []string
}

// table is ordered: when several categories match a description, the one
// listed first wins. First match, not best match.
var table = []Category{
	{Name: "Salary", Keywords: []string{"salary", "payroll", "wages"}},
	{Name: "Rent", Keywords: []string{"rent", "lease"}},
	{Name: "Utilities", Keywords: []string{"electricity", "water", "gas", "utility"}},
	{Name: "Telephone", Keywords: []string{"mobile", "phone", "airtel", "vodafone", "jio"}},
	{Name: "Internet", Keywords: []string{"internet", "broadband", "wifi"}},
	{Name: "Insurance", Keywords: []string{"insurance", "premium", "lic"}},
	{Name: "Bank Charges", Keywords: []string{"charges", "fee", "sms", "atm"}},
	{Name: "Interest", Keywords: []string{"interest", "int.cr", "int.dr"}},
	{Name: "Cash Withdrawal", Keywords: []string{"atm", "cash", "withdrawal"}},
	{Name: "Transfer", Keywords: []string{"transfer", "neft", "rtgs", "imps", "upi"}},
	{Name: "Purchase", Keywords: []string{"purchase", "shopping", "amazon", "flipkart"}},
	{Name: "Fuel", Keywords: []string{"petrol", "diesel", "fuel", "hp", "iocl"}},
}

// Categorizer matches descriptions against the compiled keyword table.
// It is immutable after construction and safe for concurrent use.
type Categorizer struct {
	matcher *ahocorasick.Matcher
	// tableIdx maps each compiled pattern back to its category's position in
	// the table, preserving table order as the tie-break.
	tableIdx []int
}

// New compiles the keyword table into a matcher.
func New() *Categorizer {
	var patterns [][]byte
	var tableIdx []int
	for i, cat := range table {
		for _, kw := range cat.Keywords {
			patterns = append(patterns, []byte(kw))
			tableIdx = append(tableIdx, i)
		}
	}
	return &Categorizer{
		matcher:  ahocorasick.NewMatcher(patterns),
		tableIdx: tableIdx,
	}
}

// Categorize returns the name of the first table entry with a keyword
// contained in the description, or Miscellaneous when none match.
func (c *Categorizer) Categorize(description string) string {
	matches := c.matcher.Match([]byte(strings.ToLower(description)))
	if len(matches) == 0 {
		return Miscellaneous
	}

	best := len(table)
	for _, patternIdx := range matches {
		if patternIdx >= 0 && patternIdx < len(c.tableIdx) && c.tableIdx[patternIdx] < best {
			best = c.tableIdx[patternIdx]
		}
	}
	if best == len(table) {
		return Miscellaneous
	}
	return table[best].Name
}

// defaultCategorizer is the process-wide read-only instance.
var defaultCategorizer = New()

// Categorize matches against the process-wide table.
func Categorize(description string) string {
	return defaultCategorizer.Categorize(description)
}
