package decoder

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer runs a whole-document recognition pass by rendering
// each PDF page to an image and feeding it through tesseract. The pass is
// long-running (seconds to tens of seconds for multi-page scans); the
// context is checked between pages, so a caller-supplied deadline interrupts
// at page granularity.
type TesseractRecognizer struct {
	lang   string
	logger *slog.Logger
}

// NewTesseractRecognizer creates a recognizer for the given tesseract
// language code (e.g. "eng").
func NewTesseractRecognizer(lang string, logger *slog.Logger) *TesseractRecognizer {
	if lang == "" {
		lang = "eng"
	}
	return &TesseractRecognizer{lang: lang, logger: logger}
}

// RecognizeText renders every page of the document and concatenates the
// recognized text. Progress is logged per page.
func (r *TesseractRecognizer) RecognizeText(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("opening PDF for rendering: %w", err)
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(r.lang); err != nil {
		return "", fmt.Errorf("configuring tesseract language %q: %w", r.lang, err)
	}

	pages := doc.NumPage()
	var out strings.Builder

	for n := 0; n < pages; n++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("recognition interrupted at page %d/%d: %w", n+1, pages, err)
		}

		img, err := doc.Image(n)
		if err != nil {
			return "", fmt.Errorf("rendering page %d: %w", n+1, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encoding page %d: %w", n+1, err)
		}

		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			return "", fmt.Errorf("loading page %d into tesseract: %w", n+1, err)
		}
		text, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("recognizing page %d: %w", n+1, err)
		}

		out.WriteString(text)
		out.WriteString("\n")

		if r.logger != nil {
			r.logger.Info("recognized page",
				slog.Int("page", n+1),
				slog.Int("pages", pages),
				slog.Int("chars", len(text)))
		}
	}

	return out.String(), nil
}
