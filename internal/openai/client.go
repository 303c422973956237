// Package openai adapts the OpenAI API to the pipeline's Embedder and
// AnswerGenerator contracts.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/docuchat-labs/docuchat/internal/domain"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from text-embedding-3-small
	DefaultEmbeddingDimensions = 1536
	// DefaultChatModel is the OpenAI model used for answer generation
	DefaultChatModel = openai.GPT4oMini
	// DefaultTemperature is the sampling temperature for answer generation
	DefaultTemperature float32 = 0.7
	// DefaultMaxAttempts bounds how often a transient backend failure is retried
	DefaultMaxAttempts = 3

	// embeddingBatchSize is how many inputs go into one embeddings request.
	// Batching is internal; callers see one call per input slice.
	embeddingBatchSize = 64
)

var (
	// ErrNoAPIKey is returned when the OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrWrongDimensions is returned when an embedding has an unexpected dimension
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoChoices is returned when the chat completion contains no choices
	ErrNoChoices = errors.New("no completion choices returned")
)

const systemPrompt = "You are a helpful assistant that answers questions based on the provided documents. " +
	"Use only the information in the documents to answer the question. " +
	"If the answer cannot be found in the documents, say so directly."

// EmbeddingAPI defines the interface for batch embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string, model string) ([][]float32, error)
}

// ChatAPI defines the interface for chat completion
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, model, system, user string, temperature float32) (string, error)
}

// Client wraps the OpenAI API behind the pipeline's Embedder and
// AnswerGenerator contracts, with rate limiting and bounded retries.
type Client struct {
	embeddings     EmbeddingAPI
	chat           ChatAPI
	embeddingModel string
	chatModel      string
	dimensions     int
	temperature    float32
	limiter        *rate.Limiter
	maxAttempts    int
}

// Config holds the OpenAI client configuration.
type Config struct {
	APIKey              string
	EmbeddingModel      string
	EmbeddingDimensions int
	ChatModel           string
	Temperature         float32
	RequestsPerSecond   float64 // 0 disables client-side rate limiting
	MaxAttempts         int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(DefaultEmbeddingModel)
	}
	if cfg.EmbeddingDimensions <= 0 {
		cfg.EmbeddingDimensions = DefaultEmbeddingDimensions
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	adapter := newAPIAdapter(cfg.APIKey)
	return &Client{
		embeddings:     adapter,
		chat:           adapter,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		dimensions:     cfg.EmbeddingDimensions,
		temperature:    cfg.Temperature,
		limiter:        limiter,
		maxAttempts:    cfg.MaxAttempts,
	}
}

// NewClientFromEnv creates a new OpenAI client using the OPENAI_API_KEY
// environment variable.
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// Embed generates embeddings for the given texts, same length and order as
// the input. Transient backend failures are retried with exponential backoff
// before surfacing as an EMBEDDING_SERVICE_ERROR.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		if err := c.wait(ctx); err != nil {
			return nil, domain.NewEmbeddingServiceError(err)
		}

		var vectors [][]float32
		err := c.retry(ctx, func() error {
			var callErr error
			vectors, callErr = c.embeddings.CreateEmbeddings(ctx, batch, c.embeddingModel)
			return callErr
		})
		if err != nil {
			return nil, domain.NewEmbeddingServiceError(err)
		}

		if len(vectors) != len(batch) {
			return nil, domain.NewEmbeddingServiceError(
				fmt.Errorf("requested %d embeddings, got %d", len(batch), len(vectors)))
		}
		for _, v := range vectors {
			if len(v) != c.dimensions {
				return nil, domain.NewEmbeddingServiceError(
					fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(v)))
			}
		}
		out = append(out, vectors...)
	}

	return out, nil
}

// Generate produces an answer grounded on the assembled context block. The
// prompt instructs the model to answer from the documents only; the reply is
// passed through unmodified.
func (c *Client) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	user := fmt.Sprintf("Documents:\n%s\n\nQuestion: %s", contextBlock, question)

	var answer string
	err := c.retry(ctx, func() error {
		var callErr error
		answer, callErr = c.chat.CreateChatCompletion(ctx, c.chatModel, systemPrompt, user, c.temperature)
		return callErr
	})
	if err != nil {
		return "", domain.NewGenerationServiceError(err)
	}

	return answer, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxAttempts-1)), ctx)
	return backoff.Retry(op, policy)
}

// apiAdapter implements EmbeddingAPI and ChatAPI against the real service.
type apiAdapter struct {
	client *openai.Client
}

func newAPIAdapter(apiKey string) *apiAdapter {
	return &apiAdapter{client: openai.NewClient(apiKey)}
}

// CreateEmbeddings calls the OpenAI embeddings API for a batch of inputs.
func (a *apiAdapter) CreateEmbeddings(ctx context.Context, texts []string, model string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d items for %d inputs", len(resp.Data), len(texts))
	}

	// the API tags each embedding with its input index; order by it
	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, fmt.Errorf("embedding response index %d out of range", item.Index)
		}
		out[item.Index] = item.Embedding
	}
	return out, nil
}

// CreateChatCompletion calls the OpenAI chat completions API.
func (a *apiAdapter) CreateChatCompletion(ctx context.Context, model, system, user string, temperature float32) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
