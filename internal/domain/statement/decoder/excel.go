package decoder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
)

// preferredSheets are checked before falling back to the first worksheet.
var preferredSheets = []string{"transactions", "statement", "sheet1"}

// oleMagic is the compound-file signature of legacy BIFF .xls workbooks,
// which excelize cannot open.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// decodeExcel loads a single worksheet and converts it to RawRecords using
// the header row as keys. Missing trailing cells default to empty string.
func decodeExcel(data []byte) ([]statement.RawRecord, error) {
	if bytes.HasPrefix(data, oleMagic) {
		return nil, fmt.Errorf("%w: legacy .xls (BIFF) workbooks are not supported, re-export the statement as .xlsx or CSV", statement.ErrUnsupportedFormat)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %w", statement.ErrDecodeFailed, err)
	}
	defer f.Close()

	sheet := findSheet(f)
	if sheet == "" {
		return nil, fmt.Errorf("%w: Excel file has no worksheets", statement.ErrDecodeFailed)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := rows[0]
	records := make([]statement.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(statement.RawRecord, len(headers))
		empty := true
		for i, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			record[header] = inferValue(cell)
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// findSheet returns a transaction-looking sheet if one exists, otherwise the
// first sheet.
func findSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, preferred := range preferredSheets {
		for _, sheet := range sheets {
			if strings.EqualFold(sheet, preferred) {
				return sheet
			}
		}
	}
	return sheets[0]
}
