package domain

import (
	"fmt"
	"time"
)

// ConversationTurn records one question/answer exchange with the chunks the
// answer was grounded on. Turns are appended only and never mutated.
type ConversationTurn struct {
	Question    string
	Answer      string
	CitedChunks []string
	CreatedAt   time.Time
}

// NewConversationTurn creates a new ConversationTurn instance
func NewConversationTurn(question, answer string, citedChunks []string, createdAt time.Time) *ConversationTurn {
	return &ConversationTurn{
		Question:    question,
		Answer:      answer,
		CitedChunks: citedChunks,
		CreatedAt:   createdAt,
	}
}

// ValidateConversationTurn validates a ConversationTurn instance
func ValidateConversationTurn(t *ConversationTurn) error {
	if t == nil {
		return fmt.Errorf("conversation turn cannot be nil")
	}

	if t.Question == "" {
		return fmt.Errorf("conversation turn Question is required")
	}

	if t.CreatedAt.IsZero() {
		return fmt.Errorf("conversation turn CreatedAt is required")
	}

	return nil
}
