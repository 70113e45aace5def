package chat

import (
	"context"
	"time"

	"github.com/ragbase-ai/go-ragbase/pkg/middleware/observability"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/routing"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/text"
	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// Options configures one turn. Values are read at the start of the turn;
// changing them between turns is the supported way to toggle behavior.
type Options struct {
	// AutoComplexityRouting enables per-query model selection. Requires
	// Router; without one the flag is ignored.
	AutoComplexityRouting bool

	// UseTokenOptimization normalizes the query text before invocation.
	UseTokenOptimization bool

	// Router selects the model tier for the query.
	Router *routing.Router

	// Metrics receives turn observations; nil disables metrics.
	Metrics *observability.Metrics
}

// Ask runs one question/answer turn and streams its events.
//
// The returned channel emits, in order: one sources event, zero or more
// delta events, and, only when the invocation fails, exactly one
// terminal error event. The channel is always closed when the turn ends.
//
// Routing and optimization failures never fail the turn: a routing
// failure keeps the current pipeline binding, an optimization result
// that is empty keeps the original query; both are logged. Only an
// invocation failure (retrieval, generation, or history I/O) produces an
// error event.
//
// Consumers that abandon the stream should cancel ctx so the producing
// goroutine can stop; sends respect ctx cancellation.
//
// Turns against the same session must not overlap, since both would
// mutate that session's history. Run them sequentially.
func Ask(ctx context.Context, p Pipeline, query, sessionID string, opts Options) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		start := time.Now()
		tier := routing.TierGeneral
		active := p

		// Step 1: routing. Failure keeps the current binding.
		if opts.AutoComplexityRouting && opts.Router != nil {
			client, assessment, err := opts.Router.Select(query)
			switch {
			case err != nil:
				ragbase.LogWarn(ctx, "model routing failed, keeping current binding",
					"error", err, "score", assessment.Score)
				opts.Metrics.ObserveRoutingFallback()
			default:
				if assessment.IsComplex {
					tier = routing.TierComplex
					opts.Metrics.ObserveComplexRoute()
				}
				rebound, ok := Rebind(active, client)
				if !ok {
					ragbase.LogWarn(ctx, "pipeline is opaque, keeping current binding",
						"complex", assessment.IsComplex)
					opts.Metrics.ObserveRoutingFallback()
				} else {
					active = rebound
				}
			}
		}

		// Step 2: query optimization. An empty result keeps the original.
		turnQuery := query
		if opts.UseTokenOptimization {
			if optimized := text.Optimize(query); optimized != "" {
				turnQuery = optimized
			} else {
				ragbase.LogWarn(ctx, "query optimization produced empty text, keeping original")
			}
		}

		emit := func(ev Event) error {
			select {
			case events <- ev:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		// Step 3: invocation. Any failure yields one terminal error event.
		err := active.Answer(ctx, turnQuery, sessionID, emit)
		opts.Metrics.ObserveTurn(tier.String(), time.Since(start))
		if err != nil {
			ragbase.LogError(ctx, "turn failed", err)
			opts.Metrics.ObserveTurnError()
			select {
			case events <- Event{Type: EventError, Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return events
}
