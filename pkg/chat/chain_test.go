package chat

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/ragbase-ai/go-ragbase/pkg/middleware/ai"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/logger"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/memory"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/retrieval"
)

// fakeStore records the last search and returns canned documents.
type fakeStore struct {
	docs      []retrieval.Document
	err       error
	lastQuery string
}

func (f *fakeStore) Search(_ context.Context, query retrieval.SearchQuery) (*retrieval.SearchResult, error) {
	f.lastQuery = query.Text
	if f.err != nil {
		return nil, f.err
	}
	return &retrieval.SearchResult{Documents: f.docs, Query: query.Text, Total: len(f.docs)}, nil
}

func (f *fakeStore) Store(context.Context, []retrieval.Document) error { return nil }
func (f *fakeStore) Delete(context.Context, []string) error            { return nil }
func (f *fakeStore) Health(context.Context) error                      { return nil }
func (f *fakeStore) Close() error                                      { return nil }

func collect(t *testing.T, p Pipeline, query, sessionID string) ([]Event, error) {
	t.Helper()
	var events []Event
	err := p.Answer(context.Background(), query, sessionID, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	return events, err
}

func answerText(events []Event) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.Type == EventDelta {
			b.WriteString(ev.Delta)
		}
	}
	return b.String()
}

func TestChainAnswerOrdering(t *testing.T) {
	store := &fakeStore{docs: []retrieval.Document{
		{ID: "1", Content: "PDF stands for portable document format"},
	}}
	client := ai.NewMockClient("a PDF is a document format")
	chain := NewChain(client, retrieval.NewRetriever(store))

	events, err := collect(t, chain, "What is a PDF?", "s1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(events) < 2 {
		t.Fatalf("len(events) = %d, want sources plus deltas", len(events))
	}
	if events[0].Type != EventSources {
		t.Errorf("events[0].Type = %v, want sources", events[0].Type)
	}
	if len(events[0].Documents) != 1 || events[0].Documents[0].ID != "1" {
		t.Errorf("sources payload = %+v", events[0].Documents)
	}
	for _, ev := range events[1:] {
		if ev.Type != EventDelta {
			t.Errorf("event after sources has type %v", ev.Type)
		}
	}
	if got := answerText(events); got != "a PDF is a document format" {
		t.Errorf("reassembled answer = %q", got)
	}
}

func TestChainPromptContainsContextAndQuestion(t *testing.T) {
	store := &fakeStore{docs: []retrieval.Document{
		{ID: "1", Content: "first chunk"},
		{ID: "2", Content: "second chunk"},
	}}
	client := ai.NewMockClient("answer")
	chain := NewChain(client, retrieval.NewRetriever(store))

	if _, err := collect(t, chain, "the question", "s1"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	sent := client.LastInput()
	if !strings.Contains(sent, "first chunk") || !strings.Contains(sent, "second chunk") {
		t.Errorf("prompt missing context chunks:\n%s", sent)
	}
	if !strings.Contains(sent, "---") {
		t.Errorf("prompt missing chunk separator:\n%s", sent)
	}
	if !strings.Contains(sent, "Question: the question") {
		t.Errorf("prompt missing question:\n%s", sent)
	}
	if strings.Contains(sent, "Conversation so far") {
		t.Errorf("history section present without history binding:\n%s", sent)
	}
}

func TestChainRetrievalFailure(t *testing.T) {
	store := &fakeStore{err: context.DeadlineExceeded}
	chain := NewChain(ai.NewMockClient("unused"), retrieval.NewRetriever(store))

	events, err := collect(t, chain, "q", "s1")
	if err == nil {
		t.Fatal("Answer() expected error from retrieval stage")
	}
	if len(events) != 0 {
		t.Errorf("events emitted before retrieval failure: %+v", events)
	}
}

func TestChainFlowLogging(t *testing.T) {
	store := &fakeStore{docs: []retrieval.Document{{ID: "1", Content: "chunk"}}}
	client := ai.NewMockClient("logged answer")

	var buf bytes.Buffer
	flowLog := logger.New(logger.NewStandardAdapter(log.New(&buf, "", 0)))
	chain := NewChain(client, retrieval.NewRetriever(store), WithFlowLogger(flowLog))

	events, err := collect(t, chain, "the question", "s1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	// Logging stages are pass-through: the answer is unchanged.
	if got := answerText(events); got != "logged answer" {
		t.Errorf("answer = %q, want %q", got, "logged answer")
	}

	out := buf.String()
	if !strings.Contains(out, "[PROMPT]") || !strings.Contains(out, "preview=") {
		t.Errorf("missing prompt preview log:\n%s", out)
	}
	if !strings.Contains(out, "[GENERATE]") || !strings.Contains(out, "duration=") {
		t.Errorf("missing generation timing log:\n%s", out)
	}
}

func TestHistoryChainCarriesTranscript(t *testing.T) {
	store := &fakeStore{docs: []retrieval.Document{{ID: "1", Content: "chunk"}}}
	client := ai.NewMockClient("second answer")
	mem := memory.NewConversation()
	ctx := context.Background()

	if err := mem.Append(ctx, "s1",
		memory.Message{Role: "user", Content: "first question"},
		memory.Message{Role: "assistant", Content: "first answer"},
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	pipeline := WithHistory(NewChain(client, retrieval.NewRetriever(store)), mem)
	if _, err := collect(t, pipeline, "second question", "s1"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	sent := client.LastInput()
	if !strings.Contains(sent, "user: first question") {
		t.Errorf("prompt missing history transcript:\n%s", sent)
	}
	if !strings.Contains(sent, "assistant: first answer") {
		t.Errorf("prompt missing assistant history:\n%s", sent)
	}

	// The turn itself is appended after generation.
	messages, err := mem.Messages(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(messages))
	}
	if messages[2].Content != "second question" || messages[3].Content != "second answer" {
		t.Errorf("appended turn = %+v", messages[2:])
	}
}

func TestHistoryChainMessageLimit(t *testing.T) {
	store := &fakeStore{docs: []retrieval.Document{{ID: "1", Content: "chunk"}}}
	client := ai.NewMockClient("answer")
	mem := memory.NewConversation()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := mem.Append(ctx, "s1", memory.Message{Role: "user", Content: string(rune('a' + i))}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	pipeline := WithHistory(NewChain(client, retrieval.NewRetriever(store)), mem)
	if _, err := collect(t, pipeline, "q", "s1"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	sent := client.LastInput()
	if strings.Contains(sent, "user: a") {
		t.Errorf("prompt carries history beyond the message limit:\n%s", sent)
	}
	if !strings.Contains(sent, "user: j") {
		t.Errorf("prompt missing most recent history:\n%s", sent)
	}
}

func TestHistoryChainFailedTurnLeavesHistory(t *testing.T) {
	store := &fakeStore{docs: []retrieval.Document{{ID: "1", Content: "chunk"}}}
	client := ai.NewMockClientWithError("provider down")
	mem := memory.NewConversation()

	pipeline := WithHistory(NewChain(client, retrieval.NewRetriever(store)), mem)
	if _, err := collect(t, pipeline, "q", "s1"); err == nil {
		t.Fatal("Answer() expected generation error")
	}

	count, exists, err := mem.Info(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if exists && count != 0 {
		t.Errorf("failed turn wrote %d history messages", count)
	}
}

func TestRebindPreservesRetrieverIdentity(t *testing.T) {
	store := &fakeStore{}
	retriever := retrieval.NewRetriever(store)
	flowLog := logger.Default()
	original := NewChain(ai.NewMockClient("one"), retriever,
		WithSystemPrompt("custom prompt"), WithFlowLogger(flowLog))
	replacement := ai.NewMockClient("two")

	rebound, ok := Rebind(original, replacement)
	if !ok {
		t.Fatal("Rebind() ok = false for decomposable pipeline")
	}
	if rebound == Pipeline(original) {
		t.Fatal("Rebind() returned the original pipeline")
	}

	components := rebound.(Decomposable).Components()
	if components.Retriever != retriever {
		t.Error("rebound pipeline has a different retriever reference")
	}
	if components.Client != ai.Client(replacement) {
		t.Error("rebound pipeline not bound to the new client")
	}
	if components.SystemPrompt != "custom prompt" {
		t.Errorf("system prompt = %q, want preserved", components.SystemPrompt)
	}
	if components.Logger != flowLog {
		t.Error("rebound pipeline has a different flow logger reference")
	}

	// The original binding is untouched.
	if original.Components().Client == ai.Client(replacement) {
		t.Error("Rebind() mutated the original pipeline")
	}
}

func TestRebindPreservesHistoryBinding(t *testing.T) {
	store := &fakeStore{}
	retriever := retrieval.NewRetriever(store)
	mem := memory.NewConversation()
	cfg := HistoryConfig{InputKey: "q", HistoryKey: "h", MessageLimit: 2}
	original := WithHistory(NewChain(ai.NewMockClient("one"), retriever), mem, cfg)

	rebound, ok := Rebind(original, ai.NewMockClient("two"))
	if !ok {
		t.Fatal("Rebind() ok = false")
	}

	components := rebound.(Decomposable).Components()
	if components.Memory != mem {
		t.Error("rebound pipeline has a different memory reference")
	}
	if components.History == nil || *components.History != cfg {
		t.Errorf("history binding = %+v, want %+v", components.History, cfg)
	}
}

// opaquePipeline implements Pipeline but not Decomposable.
type opaquePipeline struct{}

func (opaquePipeline) Answer(context.Context, string, string, EmitFunc) error { return nil }

func TestRebindOpaquePipeline(t *testing.T) {
	original := opaquePipeline{}

	rebound, ok := Rebind(original, ai.NewMockClient("x"))
	if ok {
		t.Error("Rebind() ok = true for opaque pipeline")
	}
	if rebound != Pipeline(original) {
		t.Error("Rebind() did not return the original pipeline")
	}
}
