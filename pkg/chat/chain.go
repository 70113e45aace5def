// Package chat implements the conversational question-answering pipeline:
// a retrieval-grounded chain, an optional history binding, model
// rebinding, and the streaming turn orchestrator.
package chat

import (
	"context"
	"strings"

	"github.com/ragbase-ai/go-ragbase/pkg/middleware/ai"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/logger"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/memory"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/prompt"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/retrieval"
	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// DefaultSystemPrompt grounds the model in the retrieved context.
const DefaultSystemPrompt = `You are an assistant that answers questions using only the provided context.
Use the context below to answer the question at the end.
If the context does not contain the answer, say that you don't know instead of guessing.
Keep the answer concise, three sentences at most, and format it as markdown.`

// turnTemplate assembles one turn's prompt. The context block and
// history transcript are injected as template data; the query arrives as
// the flow input.
const turnTemplate = `{{.System}}

Context:
{{.Context}}
{{if .History}}
Conversation so far:
{{.History}}
{{end}}
Question: {{.Input}}`

// Pipeline is one conversational QA pipeline bound to a model.
//
// Answer runs a single turn and pushes events through emit in order:
// one sources event, then zero or more deltas. Implementations return
// an error instead of emitting it; the orchestrator owns error events.
type Pipeline interface {
	Answer(ctx context.Context, query, sessionID string, emit EmitFunc) error
}

// HistoryConfig is the history binding of a pipeline: which prompt
// variables carry the question and the transcript, and how many stored
// messages a turn may carry into the prompt.
type HistoryConfig struct {
	InputKey     string // template variable holding the question
	HistoryKey   string // template variable holding the transcript
	MessageLimit int    // most recent messages included per turn
}

// DefaultHistoryConfig returns the standard history binding.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		InputKey:     "question",
		HistoryKey:   "chat_history",
		MessageLimit: memory.DefaultMessageLimit,
	}
}

// Components is the decomposition of a pipeline: everything needed to
// reconstruct it around a different model.
type Components struct {
	Client       ai.Client
	Retriever    *retrieval.Retriever
	SystemPrompt string
	Logger       *logger.Logger

	// History binding; nil when the pipeline carries no history.
	Memory  *memory.ConversationMemory
	History *HistoryConfig
}

// Decomposable is the capability to report a pipeline's components.
//
// Pipelines that cannot be decomposed simply don't implement this
// interface; Rebind treats them as opaque and leaves them unchanged.
type Decomposable interface {
	Components() Components
}

// Chain is a direct pipeline composition: retrieval, prompt assembly,
// generation. It carries no history; every turn stands alone.
type Chain struct {
	client       ai.Client
	retriever    *retrieval.Retriever
	systemPrompt string
	flowLog      *logger.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithSystemPrompt overrides the default system prompt.
func WithSystemPrompt(systemPrompt string) ChainOption {
	return func(c *Chain) {
		c.systemPrompt = systemPrompt
	}
}

// WithFlowLogger adds debug-level flow stages around the turn: a preview
// of the assembled prompt and the generation timing.
//
// Example:
//
//	flowLog := logger.New(logger.NewZerologAdapter(zl))
//	chain := chat.NewChain(client, retriever, chat.WithFlowLogger(flowLog))
func WithFlowLogger(flowLog *logger.Logger) ChainOption {
	return func(c *Chain) {
		c.flowLog = flowLog
	}
}

// NewChain creates a pipeline from a model client and a retriever.
//
// Example:
//
//	chain := chat.NewChain(client, retrieval.NewRetriever(store))
//	events := chat.Ask(ctx, chain, "What is a PDF?", "session-1", chat.Options{})
func NewChain(client ai.Client, retriever *retrieval.Retriever, opts ...ChainOption) *Chain {
	c := &Chain{
		client:       client,
		retriever:    retriever,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ Pipeline     = (*Chain)(nil)
	_ Decomposable = (*Chain)(nil)
)

// Components implements the Decomposable interface.
func (c *Chain) Components() Components {
	return Components{
		Client:       c.client,
		Retriever:    c.retriever,
		SystemPrompt: c.systemPrompt,
		Logger:       c.flowLog,
	}
}

// Answer implements the Pipeline interface for a history-free turn.
func (c *Chain) Answer(ctx context.Context, query, _ string, emit EmitFunc) error {
	_, err := c.run(ctx, query, "", nil, emit)
	return err
}

// run executes one turn and returns the accumulated answer text.
//
// The turn is a flow: prompt assembly feeds the model agent, and the
// agent's streamed output is tapped delta by delta on its way out.
func (c *Chain) run(ctx context.Context, query, historyBlock string, binding *HistoryConfig, emit EmitFunc) (string, error) {
	docs, err := c.retriever.Retrieve(ctx, query)
	if err != nil {
		return "", ragbase.WrapErr(ctx, err, "retrieval stage failed")
	}
	if err := emit(Event{Type: EventSources, Documents: docs}); err != nil {
		return "", err
	}

	data := map[string]any{
		"System":  c.systemPrompt,
		"Context": retrieval.BuildContext(docs),
		"History": historyBlock,
	}
	// Expose the bound variable names for custom prompt templates.
	if binding != nil {
		data[binding.InputKey] = query
		data[binding.HistoryKey] = historyBlock
	}

	tap := &deltaWriter{emit: emit}
	flow := ragbase.NewFlow().Use(prompt.Template(turnTemplate, data))

	agent := ai.Agent(c.client)
	if c.flowLog != nil {
		flow.Use(c.flowLog.Debug().Head("PROMPT", 120))
		agent = c.flowLog.Debug().Timing("GENERATE", agent)
	}
	flow.Use(agent)

	if err := flow.Run(ctx, query, tap); err != nil {
		return "", err
	}
	return tap.full.String(), nil
}

// deltaWriter forwards each written fragment as a delta event while
// accumulating the full answer for the history store.
type deltaWriter struct {
	emit EmitFunc
	full strings.Builder
}

func (w *deltaWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := w.emit(Event{Type: EventDelta, Delta: string(p)}); err != nil {
		return 0, err
	}
	w.full.Write(p)
	return len(p), nil
}

// HistoryChain decorates a Chain with a per-session history binding.
//
// Each turn reads the most recent stored messages once before
// generation, and appends the question and the accumulated answer once
// after a successful generation. Failed turns leave history untouched.
type HistoryChain struct {
	chain  *Chain
	memory *memory.ConversationMemory
	config HistoryConfig
}

// WithHistory wraps a chain with a history binding.
//
// Example:
//
//	mem := memory.NewConversationWithStore(store)
//	pipeline := chat.WithHistory(chat.NewChain(client, retriever), mem)
func WithHistory(chain *Chain, mem *memory.ConversationMemory, config ...HistoryConfig) *HistoryChain {
	cfg := DefaultHistoryConfig()
	if len(config) > 0 {
		if config[0].InputKey != "" {
			cfg.InputKey = config[0].InputKey
		}
		if config[0].HistoryKey != "" {
			cfg.HistoryKey = config[0].HistoryKey
		}
		if config[0].MessageLimit > 0 {
			cfg.MessageLimit = config[0].MessageLimit
		}
	}
	return &HistoryChain{chain: chain, memory: mem, config: cfg}
}

var (
	_ Pipeline     = (*HistoryChain)(nil)
	_ Decomposable = (*HistoryChain)(nil)
)

// Components implements the Decomposable interface.
func (h *HistoryChain) Components() Components {
	components := h.chain.Components()
	components.Memory = h.memory
	cfg := h.config
	components.History = &cfg
	return components
}

// Answer implements the Pipeline interface for a history-bound turn.
func (h *HistoryChain) Answer(ctx context.Context, query, sessionID string, emit EmitFunc) error {
	messages, err := h.memory.Messages(ctx, sessionID, h.config.MessageLimit)
	if err != nil {
		return ragbase.WrapErr(ctx, err, "failed to read conversation history")
	}

	answer, err := h.chain.run(ctx, query, memory.Transcript(messages), &h.config, emit)
	if err != nil {
		return err
	}

	if err := h.memory.Append(ctx, sessionID,
		memory.Message{Role: "user", Content: query},
		memory.Message{Role: "assistant", Content: answer},
	); err != nil {
		return ragbase.WrapErr(ctx, err, "failed to append conversation history")
	}
	return nil
}
