// Package conversation keeps the append-only record of question/answer
// turns for the current session.
package conversation

import (
	"sync"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

// Log is an in-memory append-only conversation history. Turns are never
// mutated or removed individually; Reset drops the whole session.
type Log struct {
	mu    sync.RWMutex
	turns []domain.ConversationTurn
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append records a completed turn. Invalid turns are rejected.
func (l *Log) Append(turn domain.ConversationTurn) error {
	if err := domain.ValidateConversationTurn(&turn); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid conversation turn", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
	return nil
}

// History returns all turns in insertion order, oldest first. The returned
// slice is a copy; callers cannot mutate the log through it.
func (l *Log) History() []domain.ConversationTurn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.ConversationTurn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len reports the number of recorded turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Reset discards the whole history.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}
