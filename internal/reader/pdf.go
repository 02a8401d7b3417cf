package reader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadPDFText extracts the plain text of every page of a PDF, pages joined
// by blank lines, rows by newlines. Pages that fail to decode are skipped
// with a warning rather than failing the whole document.
func ReadPDFText(path string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("reader.pdf.close_failed", "path", path, "error", cerr)
		}
	}()

	var b strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			logger.Warn("reader.pdf.page_skipped", "path", path, "page", i, "error", err)
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
				b.WriteByte(' ')
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	text := b.String()
	logger.Debug("reader.pdf.ok", "path", path, "pages", numPages, "chars", len(text))
	return text, nil
}
