package extractor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal PDF with one page per entry. An empty entry
// produces a page without a content stream, like a scanned image page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		contentRef := ""
		if text != "" {
			contentRef = fmt.Sprintf(" /Contents %d 0 R", 5+2*i)
		}
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >>%s >>",
			contentRef,
		))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return buf.Bytes()
}

func extractBytes(p PDF, data []byte) (string, error) {
	return p.Extract(bytes.NewReader(data), int64(len(data)))
}

func TestPDF_Extract(t *testing.T) {
	var p PDF

	t.Run("pages concatenated in order", func(t *testing.T) {
		text, err := extractBytes(p, buildPDF(t, "alpha page", "beta page", "gamma page"))

		require.NoError(t, err)
		assert.Equal(t, "\nalpha page\nbeta page\ngamma page", text)
	})

	t.Run("page without text layer yields nothing", func(t *testing.T) {
		text, err := extractBytes(p, buildPDF(t, "first", "", "third"))

		require.NoError(t, err)
		assert.Equal(t, "\nfirst\nthird", text)
	})

	t.Run("image only document is empty, not an error", func(t *testing.T) {
		text, err := extractBytes(p, buildPDF(t, ""))

		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("plain text is rejected", func(t *testing.T) {
		text, err := extractBytes(p, []byte("just some notes, definitely not a pdf"))

		assert.ErrorIs(t, err, ErrExtraction)
		assert.Empty(t, text)
	})

	t.Run("empty input is rejected", func(t *testing.T) {
		_, err := extractBytes(p, nil)

		assert.ErrorIs(t, err, ErrExtraction)
	})

	t.Run("truncated pdf is rejected", func(t *testing.T) {
		data := buildPDF(t, "alpha page")
		_, err := extractBytes(p, data[:len(data)/2])

		assert.ErrorIs(t, err, ErrExtraction)
	})
}

func TestPDF_ExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, buildPDF(t, "on disk"), 0o600))

	text, err := PDF{}.ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\non disk", text)

	_, err = PDF{}.ExtractFile(filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF(buildPDF(t, "x")))
	assert.False(t, isPDF([]byte("<html></html>")))
}
