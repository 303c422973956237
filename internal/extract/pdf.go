// Package extract turns uploaded files into plain-text pages.
package extract

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dslipak/pdf"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

// DefaultPageTimeout bounds text extraction of a single page. Malformed
// content streams can hang the parser indefinitely.
const DefaultPageTimeout = 10 * time.Second

// ErrPageTimeout is returned when a single page takes longer than the
// configured timeout to extract.
var ErrPageTimeout = errors.New("page extraction timed out")

// ErrNoText is returned when no page of the document yields any text.
var ErrNoText = errors.New("no extractable text in document")

// PDFExtractor reads PDF files and produces per-page plain text.
type PDFExtractor struct {
	pageTimeout time.Duration
}

// NewPDFExtractor creates an extractor with the given per-page timeout.
// A non-positive timeout falls back to DefaultPageTimeout.
func NewPDFExtractor(pageTimeout time.Duration) *PDFExtractor {
	if pageTimeout <= 0 {
		pageTimeout = DefaultPageTimeout
	}
	return &PDFExtractor{pageTimeout: pageTimeout}
}

// ExtractFile extracts the pages of the PDF at path.
func (e *PDFExtractor) ExtractFile(path string) ([]domain.Page, error) {
	reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	return e.extract(reader)
}

// Extract extracts the pages of a PDF from an in-memory or seekable
// source, such as a multipart upload spooled to a buffer.
func (e *PDFExtractor) Extract(r io.ReaderAt, size int64) ([]domain.Page, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	return e.extract(reader)
}

func (e *PDFExtractor) extract(reader *pdf.Reader) ([]domain.Page, error) {
	numPages := reader.NumPage()
	pages := make([]domain.Page, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := e.pageText(page)
		if err != nil {
			// skip the broken page, keep the rest of the document
			log.Printf("extract: page %d failed: %v", i, err)
			continue
		}

		pages = append(pages, domain.Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, ErrNoText
	}
	return pages, nil
}

// pageText runs GetPlainText in a goroutine so a pathological page cannot
// stall ingestion. The goroutine is leaked on timeout; the parser offers
// no cancellation.
func (e *PDFExtractor) pageText(page pdf.Page) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{"", fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		text, err := page.GetPlainText(nil)
		done <- result{text, err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-time.After(e.pageTimeout):
		return "", ErrPageTimeout
	}
}
