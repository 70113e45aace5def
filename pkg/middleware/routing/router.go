package routing

import (
	"fmt"

	"github.com/ragbase-ai/go-ragbase/pkg/middleware/ai"
	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// Tier identifies one of the two model capability levels.
type Tier int

const (
	// TierGeneral is the fast default model for lookup-style questions.
	TierGeneral Tier = iota
	// TierComplex is the heavier reasoning model for analytical questions.
	TierComplex
)

// String returns the tier name for logging.
func (t Tier) String() string {
	switch t {
	case TierComplex:
		return "complex"
	default:
		return "general"
	}
}

// Factory creates a model client for a tier.
//
// Implementations may construct clients lazily or hand out cached ones;
// the router treats every returned error as fatal for the selection.
type Factory interface {
	Create(tier Tier) (ai.Client, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(tier Tier) (ai.Client, error)

// Create implements the Factory interface.
func (f FactoryFunc) Create(tier Tier) (ai.Client, error) {
	return f(tier)
}

// Router selects a model client per query based on complexity.
type Router struct {
	scorer  *Scorer
	factory Factory
}

// NewRouter creates a router with the built-in scoring tables.
//
// Example:
//
//	router, err := routing.NewRouter(groqFactory)
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, assessment, err := router.Select("Why do neural nets generalize?")
func NewRouter(factory Factory) (*Router, error) {
	scorer, err := NewScorer()
	if err != nil {
		return nil, err
	}
	return NewRouterWithScorer(factory, scorer), nil
}

// NewRouterWithScorer creates a router with a custom scorer.
func NewRouterWithScorer(factory Factory, scorer *Scorer) *Router {
	return &Router{scorer: scorer, factory: factory}
}

// Select assesses a query and returns the client for its tier.
//
// Input: the raw user query
// Output: the selected client, the assessment that drove the choice, and
// any factory error
// Behavior: factory errors are returned unmodified so callers can decide
// whether to fall back; the assessment is valid even when the factory
// fails.
func (r *Router) Select(query string) (ai.Client, Assessment, error) {
	assessment := r.scorer.Assess(query)

	tier := TierGeneral
	if assessment.IsComplex {
		tier = TierComplex
	}

	client, err := r.factory.Create(tier)
	if err != nil {
		return nil, assessment, err
	}
	return client, assessment, nil
}

// Assess exposes the underlying scorer without touching the factory.
func (r *Router) Assess(query string) Assessment {
	return r.scorer.Assess(query)
}

// Route returns a flow stage that logs the routing decision for the
// query passing through it. The stage is observational: input passes
// through unchanged.
func (r *Router) Route() ragbase.Handler {
	return ragbase.HandlerFunc(func(req *ragbase.Request, res *ragbase.Response) error {
		var query string
		if err := ragbase.Read(req, &query); err != nil {
			return err
		}

		assessment := r.scorer.Assess(query)
		ragbase.LogDebug(req.Context, "routing decision",
			"score", fmt.Sprintf("%.3f", assessment.Score),
			"complex", assessment.IsComplex,
			"indicators", len(assessment.Matched),
		)

		return ragbase.Write(res, query)
	})
}
