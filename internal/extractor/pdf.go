// Package extractor turns uploaded PDF documents into plain text.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// PDFMIME is the only content type the extractor accepts.
const PDFMIME = "application/pdf"

// sniffLen is how many leading bytes are inspected to detect the content type.
const sniffLen = 3072

// ErrExtraction marks input that is not a readable PDF.
var ErrExtraction = errors.New("text extraction failed")

// Extractor is the text extraction contract used by the question pipeline.
type Extractor interface {
	Extract(r io.ReaderAt, size int64) (string, error)
}

// PDF extracts text with github.com/ledongthuc/pdf. The zero value is ready to use.
type PDF struct{}

var _ Extractor = PDF{}

// isPDF reports whether head (the first bytes of a file) looks like a PDF document.
func isPDF(head []byte) bool {
	return mimetype.Detect(head).Is(PDFMIME)
}

// ExtractFile opens path and extracts its text.
func (p PDF) ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return p.Extract(f, st.Size())
}

// Extract concatenates the text of every page in page order.
// Pages without a text layer contribute nothing; non-PDF or corrupt input
// returns an error wrapping ErrExtraction.
func (PDF) Extract(r io.ReaderAt, size int64) (text string, err error) {
	head := make([]byte, min(size, sniffLen))
	if _, err := r.ReadAt(head, 0); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: read header: %v", ErrExtraction, err)
	}
	if !isPDF(head) {
		return "", fmt.Errorf("%w: detected %s, want %s", ErrExtraction, mimetype.Detect(head).String(), PDFMIME)
	}

	// The parser panics on some malformed objects.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: malformed pdf: %v", ErrExtraction, rec)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtraction, i, err)
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

