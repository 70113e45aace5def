package chat

import (
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/ai"
)

// Rebind constructs a pipeline identical to p but bound to client.
//
// The returned pipeline shares p's retriever by reference (never a
// copy), its system prompt, flow logger, and history binding. When p
// cannot be decomposed, Rebind returns p unchanged with ok=false;
// callers keep using the original pipeline in that case. Rebind never
// mutates p.
//
// Example:
//
//	rebound, ok := chat.Rebind(pipeline, complexClient)
//	if ok {
//		pipeline = rebound
//	}
func Rebind(p Pipeline, client ai.Client) (Pipeline, bool) {
	decomposable, ok := p.(Decomposable)
	if !ok {
		return p, false
	}

	components := decomposable.Components()
	if components.Retriever == nil {
		return p, false
	}

	opts := []ChainOption{WithSystemPrompt(components.SystemPrompt)}
	if components.Logger != nil {
		opts = append(opts, WithFlowLogger(components.Logger))
	}
	chain := NewChain(client, components.Retriever, opts...)
	if components.History == nil {
		return chain, true
	}
	return WithHistory(chain, components.Memory, *components.History), true
}
