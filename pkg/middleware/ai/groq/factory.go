package groq

import (
	"sync"

	"github.com/ragbase-ai/go-ragbase/pkg/middleware/ai"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/routing"
)

// Factory creates Groq clients per routing tier.
//
// Clients are constructed lazily on first request for a tier and cached,
// so repeated routing decisions reuse the same underlying connection
// pool. Safe for concurrent use.
type Factory struct {
	opts []Option

	mu      sync.Mutex
	clients map[routing.Tier]*Client
}

// NewFactory creates a factory that builds tier clients with the given
// options applied to each.
//
// Example:
//
//	factory := groq.NewFactory()
//	router, err := routing.NewRouter(factory)
func NewFactory(opts ...Option) *Factory {
	return &Factory{
		opts:    opts,
		clients: make(map[routing.Tier]*Client),
	}
}

var _ routing.Factory = (*Factory)(nil)

// Create implements the routing.Factory interface.
//
// TierComplex maps to the reasoning model, every other tier to the
// general model. Construction errors (such as a missing API key) are
// returned unmodified and nothing is cached for that tier.
func (f *Factory) Create(tier routing.Tier) (ai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[tier]; ok {
		return client, nil
	}

	model := GeneralModel
	if tier == routing.TierComplex {
		model = ComplexModel
	}

	client, err := New(model, f.opts...)
	if err != nil {
		return nil, err
	}
	f.clients[tier] = client
	return client, nil
}
