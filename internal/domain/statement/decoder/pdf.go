package decoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
)

// decodePDF attempts direct text-layer extraction first. Documents whose
// text layer is shorter than minPDFText are treated as scanned images and
// routed through optical recognition instead of failing.
func (d *Decoder) decodePDF(ctx context.Context, data []byte) (*Result, error) {
	text, err := extractTextLayer(data)
	if err == nil && len(strings.TrimSpace(text)) >= minPDFText {
		return &Result{Text: text}, nil
	}

	if d.ocr == nil {
		if err != nil {
			return nil, fmt.Errorf("failed to extract PDF text: %w", err)
		}
		return nil, fmt.Errorf("PDF has no usable text layer and no recognizer is configured: %w", statement.ErrOCRInsufficientText)
	}

	recognized, err := d.ocr.RecognizeText(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("optical recognition failed: %w", err)
	}
	if len(strings.TrimSpace(recognized)) < minOCRText {
		return nil, statement.ErrOCRInsufficientText
	}
	return &Result{Text: recognized, OCRUsed: true}, nil
}

// extractTextLayer pulls the embedded text layer out of a PDF.
func extractTextLayer(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading PDF text layer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plainText); err != nil {
		return "", fmt.Errorf("reading PDF text layer: %w", err)
	}
	return buf.String(), nil
}
