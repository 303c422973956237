package service

import (
	"strings"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

// ContextDelimiter separates chunk texts in the assembled context block.
const ContextDelimiter = "\n\n---\n\n"

// AssembleContext concatenates retrieved chunk texts in ranked order into a
// single context block of at most maxContextChars runes, returning the block
// and the IDs of the chunks it contains. A chunk that would overflow the
// budget is skipped whole rather than truncated, so every cited chunk's full
// text is present verbatim in the context.
//
// When results are non-empty but not a single chunk fits the budget,
// domain.ErrContextTooLarge is returned instead of a misleading partial
// context.
func AssembleContext(results domain.RetrievalResult, maxContextChars int) (string, []string, error) {
	if maxContextChars <= 0 {
		return "", nil, domain.ErrInvalidContextBudget
	}
	if len(results) == 0 {
		return "", []string{}, nil
	}

	var b strings.Builder
	citations := make([]string, 0, len(results))
	used := 0
	delimLen := len([]rune(ContextDelimiter))

	for _, sc := range results {
		textLen := len([]rune(sc.Chunk.Text))
		need := textLen
		if used > 0 {
			need += delimLen
		}
		if used+need > maxContextChars {
			continue
		}

		if used > 0 {
			b.WriteString(ContextDelimiter)
		}
		b.WriteString(sc.Chunk.Text)
		used += need
		citations = append(citations, sc.Chunk.ID)
	}

	if len(citations) == 0 {
		return "", nil, domain.ErrContextTooLarge
	}

	return b.String(), citations, nil
}
