package domain

import (
	"fmt"
	"strings"
	"time"
)

// Page holds the extracted text of a single document page.
type Page struct {
	Number int
	Text   string
}

// Document represents one uploaded document after text extraction.
// It is immutable once created; the raw PDF bytes never reach the core.
type Document struct {
	ID        string
	Name      string
	Pages     []Page
	CreatedAt time.Time
}

// NewDocument creates a new Document instance
func NewDocument(id, name string, pages []Page, createdAt time.Time) *Document {
	return &Document{
		ID:        id,
		Name:      name,
		Pages:     pages,
		CreatedAt: createdAt,
	}
}

// Text returns the full extracted text of the document in page order.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// PageAt returns the 1-based page number containing the given rune offset
// into the concatenated document text, or 0 when the document has no pages.
func (d *Document) PageAt(offset int) int {
	if len(d.Pages) == 0 {
		return 0
	}
	pos := 0
	for i, p := range d.Pages {
		end := pos + len([]rune(p.Text))
		if offset < end || i == len(d.Pages)-1 {
			return p.Number
		}
		// account for the joining newline
		pos = end + 1
		if offset < pos {
			return p.Number
		}
	}
	return d.Pages[len(d.Pages)-1].Number
}

// Chunk is a bounded contiguous slice of a document's text used as the
// retrieval unit. Adjacent chunks intentionally overlap by the configured
// amount, so offset ranges are not disjoint.
type Chunk struct {
	ID            string
	DocumentID    string
	SequenceIndex int
	Text          string
	StartOffset   int // rune offset into the source document text
	EndOffset     int
	Page          int // 1-based page the chunk starts on, 0 if unknown
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Name == "" {
		return fmt.Errorf("document Name is required")
	}

	return nil
}

// ValidateChunk validates a Chunk instance
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}

	if c.DocumentID == "" {
		return fmt.Errorf("chunk DocumentID is required")
	}

	if c.SequenceIndex < 0 {
		return fmt.Errorf("chunk SequenceIndex cannot be negative")
	}

	if c.StartOffset < 0 || c.EndOffset < c.StartOffset {
		return fmt.Errorf("chunk offsets are invalid: [%d, %d)", c.StartOffset, c.EndOffset)
	}

	return nil
}
