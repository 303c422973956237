package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDocument(t *testing.T) {
	now := time.Now()
	pages := []Page{
		{Number: 1, Text: "first page"},
		{Number: 2, Text: "second page"},
	}

	doc := NewDocument("d1", "report.pdf", pages, now)

	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, pages, doc.Pages)
	assert.Equal(t, now, doc.CreatedAt)
}

func TestDocumentText(t *testing.T) {
	doc := NewDocument("d1", "report.pdf", []Page{
		{Number: 1, Text: "first"},
		{Number: 2, Text: "second"},
	}, time.Now())

	assert.Equal(t, "first\nsecond", doc.Text())
}

func TestDocumentText_Empty(t *testing.T) {
	doc := NewDocument("d1", "empty.pdf", nil, time.Now())
	assert.Equal(t, "", doc.Text())
}

func TestDocumentPageAt(t *testing.T) {
	doc := NewDocument("d1", "report.pdf", []Page{
		{Number: 1, Text: "abcde"}, // offsets 0-4, newline at 5
		{Number: 2, Text: "fghij"}, // offsets 6-10
	}, time.Now())

	tests := []struct {
		name   string
		offset int
		want   int
	}{
		{"FirstPageStart", 0, 1},
		{"FirstPageEnd", 4, 1},
		{"JoiningNewline", 5, 1},
		{"SecondPageStart", 6, 2},
		{"BeyondEnd", 100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, doc.PageAt(tt.offset))
		})
	}
}

func TestDocumentPageAt_NoPages(t *testing.T) {
	doc := NewDocument("d1", "empty.pdf", nil, time.Now())
	assert.Equal(t, 0, doc.PageAt(0))
}

func TestValidateDocument(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		doc     *Document
		wantErr bool
	}{
		{"Valid", NewDocument("d1", "report.pdf", nil, now), false},
		{"Nil", nil, true},
		{"MissingID", NewDocument("", "report.pdf", nil, now), true},
		{"MissingName", NewDocument("d1", "", nil, now), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	valid := Chunk{
		ID:            "c1",
		DocumentID:    "d1",
		SequenceIndex: 0,
		Text:          "some text",
		StartOffset:   0,
		EndOffset:     9,
		Page:          1,
	}

	tests := []struct {
		name    string
		mutate  func(*Chunk)
		wantErr bool
	}{
		{"Valid", func(c *Chunk) {}, false},
		{"MissingID", func(c *Chunk) { c.ID = "" }, true},
		{"MissingDocumentID", func(c *Chunk) { c.DocumentID = "" }, true},
		{"NegativeSequenceIndex", func(c *Chunk) { c.SequenceIndex = -1 }, true},
		{"NegativeStartOffset", func(c *Chunk) { c.StartOffset = -1 }, true},
		{"EndBeforeStart", func(c *Chunk) { c.StartOffset = 5; c.EndOffset = 3 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)

			err := ValidateChunk(&c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateChunk_Nil(t *testing.T) {
	assert.Error(t, ValidateChunk(nil))
}

func TestRetrievalResultChunkIDs(t *testing.T) {
	result := RetrievalResult{
		{Chunk: Chunk{ID: "c2"}, Score: 0.9},
		{Chunk: Chunk{ID: "c1"}, Score: 0.7},
	}

	assert.Equal(t, []string{"c2", "c1"}, result.ChunkIDs())
	assert.Empty(t, RetrievalResult{}.ChunkIDs())
}

func TestValidateConversationTurn(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		turn    *ConversationTurn
		wantErr bool
	}{
		{"Valid", NewConversationTurn("q", "a", []string{"c1"}, now), false},
		{"Nil", nil, true},
		{"MissingQuestion", NewConversationTurn("", "a", nil, now), true},
		{"ZeroTimestamp", NewConversationTurn("q", "a", nil, time.Time{}), true},
		{"EmptyAnswerAllowed", NewConversationTurn("q", "", nil, now), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConversationTurn(tt.turn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
