// Package llm wraps an OpenAI-compatible API for embeddings and chat
// completions. Both models are opaque functions to the rest of the
// system: text to vector, and (system, user) to answer text.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Options configures the client. BaseURL may point at any
// OpenAI-compatible gateway.
type Options struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Dimension  int
}

// Client calls the embedding and chat models.
type Client struct {
	api  *openai.Client
	opts Options
}

// NewClient creates a Client for the configured endpoint.
func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), opts: opts}
}

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request. Vectors are returned in
// input order; the pairing with ids downstream is positional, so order
// is restored from the response index rather than trusted blindly.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.opts.EmbedModel),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("llm: embeddings count mismatch: sent %d, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, datum := range resp.Data {
		if datum.Index < 0 || datum.Index >= len(out) {
			return nil, fmt.Errorf("llm: embedding index %d out of range", datum.Index)
		}
		if c.opts.Dimension > 0 && len(datum.Embedding) != c.opts.Dimension {
			return nil, fmt.Errorf("llm: embedding dimension mismatch: expected %d, got %d", c.opts.Dimension, len(datum.Embedding))
		}
		out[datum.Index] = datum.Embedding
	}
	return out, nil
}

// Complete sends a system/user message pair to the chat model and
// returns the raw answer text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.opts.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
