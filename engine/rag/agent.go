package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/talkrag/talkrag/engine/domain"
	"github.com/talkrag/talkrag/pkg/fn"
)

// SystemPrompt is the fixed instruction sent with every question. The
// refusal sentence is part of the contract and must not be reworded.
const SystemPrompt = `You are a TED Talk assistant that answers questions strictly and only
based on the TED dataset context provided to you (metadata and transcript
passages).

You must not use any external knowledge, the open internet, or information
that is not explicitly contained in the retrieved context.

If the answer cannot be determined from the provided context, respond:
"I don't know based on the provided TED data."

Always explain your answer using the given context, quoting or paraphrasing
the relevant transcript or metadata when helpful.`

// NoContextPlaceholder stands in for the context block when retrieval
// comes back empty, so the model is told explicitly there is nothing.
const NoContextPlaceholder = "No relevant context found in the database."

const contextItemHeader = "--- Context Item ---"

// Completer sends a system/user message pair to the chat model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options configures the answering agent.
type Options struct {
	TopK   int
	System string
}

// DefaultOptions returns the standard agent configuration.
func DefaultOptions() Options {
	return Options{TopK: 5, System: SystemPrompt}
}

// Agent runs the retrieve, augment, generate flow.
type Agent struct {
	retriever *Retriever
	opts      Options
	logger    *slog.Logger
	complete  fn.Stage[string, string]
}

// NewAgent creates an Agent.
func NewAgent(retriever *Retriever, chat Completer, opts Options, logger *slog.Logger) *Agent {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.System == "" {
		opts.System = SystemPrompt
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Agent{retriever: retriever, opts: opts, logger: logger}
	a.complete = fn.TracedStage("rag.complete", func(ctx context.Context, user string) fn.Result[string] {
		return fn.FromPair(chat.Complete(ctx, a.opts.System, user))
	})
	return a
}

// AugmentedPrompt is the exact prompt pair sent to the model, returned
// alongside the answer so callers can audit what the model saw.
type AugmentedPrompt struct {
	System string `json:"System"`
	User   string `json:"User"`
}

// Bundle is the full answer: response text, the context items it was
// grounded on, and the prompt that produced it.
type Bundle struct {
	Response string               `json:"response"`
	Context  []domain.ContextItem `json:"context"`
	Prompt   AugmentedPrompt      `json:"Augmented_prompt"`
}

// Ask answers a question. It never returns an error: model failures are
// reported in the response text, and the bundle always carries whatever
// context and prompt were used.
func (a *Agent) Ask(ctx context.Context, question string) Bundle {
	a.logger.Info("question received", "question_len", len(question))

	items := a.retriever.Retrieve(ctx, question, a.opts.TopK)
	if items == nil {
		items = []domain.ContextItem{}
	}
	a.logger.Info("context retrieved", "items", len(items))

	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock(items), question)

	response, err := a.complete(ctx, user).Unwrap()
	if err != nil {
		a.logger.Error("chat completion failed", "err", err)
		response = fmt.Sprintf("Error communicating with LLM: %v", err)
	}

	return Bundle{
		Response: response,
		Context:  items,
		Prompt:   AugmentedPrompt{System: a.opts.System, User: user},
	}
}

// contextBlock renders the retrieved chunks for the user message.
func contextBlock(items []domain.ContextItem) string {
	if len(items) == 0 {
		return NoContextPlaceholder
	}
	parts := make([]string, len(items))
	for i, c := range items {
		parts[i] = contextItemHeader + "\n" + c.Chunk
	}
	return strings.Join(parts, "\n\n")
}
