// Package pdfextract pulls plain text out of PDF bytes, page by page.
package pdfextract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ExtractPages returns the text of each page in order. Pages that fail
// text extraction are returned as empty strings rather than aborting the
// whole document.
func ExtractPages(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("pdf input is empty")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
