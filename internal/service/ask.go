package service

import (
	"context"
	"time"

	"github.com/docuchat-labs/docuchat/internal/domain"
	"github.com/docuchat-labs/docuchat/internal/telemetry"
)

// NoRelevantInformationAnswer is returned verbatim when retrieval finds
// nothing. It is reserved for the genuine zero-result case; a failed
// retrieval or generation call is reported as an error, never as this.
const NoRelevantInformationAnswer = "No relevant information found for your query."

// Retriever defines the interface for question-time chunk retrieval.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) (domain.RetrievalResult, error)
}

// AnswerGenerator defines the interface for the generation backend. The
// assembled context and question go in, a free-form answer comes out; the
// core never rewrites the model's output.
type AnswerGenerator interface {
	Generate(ctx context.Context, question, contextBlock string) (string, error)
}

// ConversationAppender records completed question/answer turns.
type ConversationAppender interface {
	Append(turn domain.ConversationTurn) error
}

// AskInput carries one question through the pipeline.
type AskInput struct {
	Question string
	TopK     int // 0 means the configured default
}

// AskOutput is the answer plus its provenance.
type AskOutput struct {
	Answer    string
	Citations []string
	Retrieved domain.RetrievalResult
	Grounded  bool // false when nothing was retrieved and no generation happened
}

// AskService orchestrates retrieve, assemble, generate and the conversation
// log for a single question.
type AskService struct {
	retriever Retriever
	generator AnswerGenerator
	log       ConversationAppender
	settings  domain.PipelineSettings
	now       func() time.Time
}

// NewAskService creates a new AskService instance. Settings are validated
// here; an invalid combination fails construction rather than the first
// question.
func NewAskService(retriever Retriever, generator AnswerGenerator, log ConversationAppender, settings domain.PipelineSettings) (*AskService, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &AskService{
		retriever: retriever,
		generator: generator,
		log:       log,
		settings:  settings,
		now:       time.Now,
	}, nil
}

// Ask answers a question against the ingested corpus. Retrieval and
// generation failures propagate unchanged and leave the conversation log
// untouched; only completed turns are appended.
func (s *AskService) Ask(ctx context.Context, input AskInput) (*AskOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "AskService.Ask", telemetry.SpanAttributes{
		Operation: "ask",
	})
	defer span.End()

	topK := input.TopK
	if topK == 0 {
		topK = s.settings.TopK
	}
	if topK < 0 {
		return nil, domain.ErrInvalidTopK
	}

	retrieved, err := s.retriever.Retrieve(ctx, input.Question, topK)
	if err != nil {
		return nil, err
	}

	if len(retrieved) == 0 {
		// nothing to ground an answer on; do not call the generation backend
		out := &AskOutput{
			Answer:    NoRelevantInformationAnswer,
			Citations: []string{},
			Retrieved: retrieved,
			Grounded:  false,
		}
		if err := s.appendTurn(input.Question, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	contextBlock, citations, err := AssembleContext(retrieved, s.settings.MaxContextChars)
	if err != nil {
		return nil, err
	}

	answer, err := s.generator.Generate(ctx, input.Question, contextBlock)
	if err != nil {
		return nil, err
	}

	out := &AskOutput{
		Answer:    answer,
		Citations: citations,
		Retrieved: retrieved,
		Grounded:  true,
	}
	if err := s.appendTurn(input.Question, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AskService) appendTurn(question string, out *AskOutput) error {
	turn := domain.NewConversationTurn(question, out.Answer, out.Citations, s.now().UTC())
	return s.log.Append(*turn)
}
