// Package rag answers questions over the ingested corpus. It embeds the
// question, retrieves the closest chunks from the vector store, assembles
// an auditable two-message prompt, and calls the chat model.
package rag

import (
	"context"
	"log/slog"

	"github.com/talkrag/talkrag/engine/domain"
	"github.com/talkrag/talkrag/engine/semantic"
)

// QueryEmbedder turns a query string into a vector.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher abstracts vector similarity search.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]semantic.SearchResult, error)
}

// Retriever finds the chunks most relevant to a query.
type Retriever struct {
	embed  QueryEmbedder
	store  Searcher
	logger *slog.Logger
}

// NewRetriever creates a Retriever. A nil store is allowed and makes
// every retrieval come back empty, which keeps the agent answerable when
// the vector database is down.
func NewRetriever(embed QueryEmbedder, store Searcher, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embed: embed, store: store, logger: logger}
}

// Retrieve returns up to topK context items ordered by descending score.
// Retrieval failures degrade to an empty result rather than an error; the
// agent then answers from an explicit no-context prompt.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []domain.ContextItem {
	if r.store == nil {
		return nil
	}

	vector, err := r.embed.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, answering without context", "err", err)
		return nil
	}

	hits, err := r.store.Search(ctx, vector, topK)
	if err != nil {
		r.logger.Warn("vector search failed, answering without context", "err", err)
		return nil
	}

	items := make([]domain.ContextItem, len(hits))
	for i, h := range hits {
		items[i] = domain.ContextItem{
			TalkID: h.Meta.TalkID,
			Title:  h.Meta.Title,
			Chunk:  h.Meta.Text,
			Score:  h.Score,
		}
		if items[i].TalkID == "" {
			items[i].TalkID = "unknown"
		}
		if items[i].Title == "" {
			items[i].Title = "Unknown Title"
		}
	}
	return items
}
