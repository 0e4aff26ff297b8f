// Package pdfx extracts plain text from PDF documents while preserving page
// boundaries as form feed markers, so downstream chunking can keep honest
// page numbers.
package pdfx

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"regulation-chat-be/pkg/apperr"
)

// Document is the extraction result for one PDF. Text joins per-page text
// with form feed characters; PageCount is the authoritative page count read
// from the PDF structure, not estimated from the text.
type Document struct {
	Text      string
	PageCount int
}

// ExtractFile extracts a PDF from disk. The document name in any returned
// error is the file path's base name.
func ExtractFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, &apperr.ExtractionError{Document: documentName(path), Cause: err}
	}
	defer f.Close()

	return Extract(f, documentName(path))
}

// Extract reads the entire content of r and extracts per-page plain text.
// A page whose text cannot be decoded contributes an empty page rather than
// failing the whole document.
func Extract(r io.Reader, name string) (Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Document{}, &apperr.ExtractionError{Document: name, Cause: err}
	}
	if len(b) == 0 {
		return Document{}, &apperr.ExtractionError{Document: name, Cause: io.ErrUnexpectedEOF}
	}

	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return Document{}, &apperr.ExtractionError{Document: name, Cause: err}
	}

	pageCount := reader.NumPage()
	pages := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
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

	return Document{
		Text:      strings.Join(pages, "\f"),
		PageCount: pageCount,
	}, nil
}

func documentName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
