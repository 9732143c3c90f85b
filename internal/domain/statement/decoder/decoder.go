// Package decoder turns raw upload bytes into semi-structured records.
// Tabular and JSON sources decode to statement.RawRecord rows; PDF sources
// decode to plain text, falling back to optical recognition when the
// document has no usable text layer.
package decoder

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
)

// minPDFText is the minimum number of characters the PDF text layer must
// yield before the document is treated as text-native. Anything shorter is
// assumed to be a scanned image and routed through optical recognition.
const minPDFText = 100

// minOCRText is the sanity threshold applied to recognized text.
const minOCRText = 50

// Recognizer recovers text from a scanned document. The recognition pass is
// long-running; implementations must honor ctx between units of work.
type Recognizer interface {
	RecognizeText(ctx context.Context, data []byte) (string, error)
}

// Result is the output of decoding one uploaded file. Exactly one of Records
// and Text is populated, depending on the source format.
type Result struct {
	Records []statement.RawRecord
	Text    string
	OCRUsed bool
}

// Decoder decodes uploaded statement files by declared extension.
type Decoder struct {
	ocr Recognizer
}

// New creates a decoder. ocr may be nil, in which case scanned PDFs fail
// instead of falling back to recognition.
func New(ocr Recognizer) *Decoder {
	return &Decoder{ocr: ocr}
}

// Decode parses data according to the declared file extension.
// Unknown extensions return statement.ErrUnsupportedFormat.
func (d *Decoder) Decode(ctx context.Context, data []byte, ext string) (*Result, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "csv":
		records, err := decodeCSV(data)
		if err != nil {
			return nil, err
		}
		return &Result{Records: records}, nil
	case "xlsx", "xls":
		records, err := decodeExcel(data)
		if err != nil {
			return nil, err
		}
		return &Result{Records: records}, nil
	case "json":
		records, err := decodeJSON(data)
		if err != nil {
			return nil, err
		}
		return &Result{Records: records}, nil
	case "pdf":
		return d.decodePDF(ctx, data)
	default:
		return nil, fmt.Errorf("%w: %q", statement.ErrUnsupportedFormat, ext)
	}
}

// delimitedReader carries a sniffed delimiter alongside the data so the
// gocsv reader factory can honor it without mutating per-call state.
type delimitedReader struct {
	io.Reader
	comma rune
}

func init() {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		if dr, ok := in.(*delimitedReader); ok && dr.comma != 0 {
			r.Comma = dr.comma
		}
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		return r
	})
}

// decodeCSV parses delimited text with a header row. Any malformed row aborts
// the whole decode; partial results are never returned.
func decodeCSV(data []byte) ([]statement.RawRecord, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	rows, err := gocsv.CSVToMaps(&delimitedReader{
		Reader: bytes.NewReader(data),
		comma:  sniffDelimiter(data),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: CSV parsing error: %w", statement.ErrDecodeFailed, err)
	}

	records := make([]statement.RawRecord, 0, len(rows))
	for _, row := range rows {
		record := make(statement.RawRecord, len(row))
		empty := true
		for key, val := range row {
			record[strings.TrimSpace(key)] = inferValue(val)
			if strings.TrimSpace(val) != "" {
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

// decodeJSON requires the buffer to be a JSON array of objects; each object
// becomes one RawRecord verbatim.
func decodeJSON(data []byte) ([]statement.RawRecord, error) {
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: JSON parsing error: expected an array of objects: %w", statement.ErrDecodeFailed, err)
	}

	records := make([]statement.RawRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, statement.RawRecord(row))
	}
	return records, nil
}

// sniffDelimiter picks the delimiter that appears most often in the header
// line. Defaults to comma.
func sniffDelimiter(data []byte) rune {
	header := string(data)
	if idx := strings.IndexByte(header, '\n'); idx >= 0 {
		header = header[:idx]
	}

	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// inferValue converts numeric strings to float64, mirroring the dynamic
// typing of the tabular sources. Empty cells become nil.
func inferValue(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return trimmed
}
