package routing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ragbase-ai/go-ragbase/pkg/middleware/ai"
	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

type recordingFactory struct {
	general ai.Client
	complex ai.Client
	calls   []Tier
	err     error
}

func (f *recordingFactory) Create(tier Tier) (ai.Client, error) {
	f.calls = append(f.calls, tier)
	if f.err != nil {
		return nil, f.err
	}
	if tier == TierComplex {
		return f.complex, nil
	}
	return f.general, nil
}

func TestRouterSelect(t *testing.T) {
	general := ai.NewMockClient("general answer")
	complex := ai.NewMockClient("complex answer")

	tests := []struct {
		name     string
		query    string
		wantTier Tier
		want     ai.Client
	}{
		{
			name:     "simple query routes to general tier",
			query:    "What is a PDF?",
			wantTier: TierGeneral,
			want:     general,
		},
		{
			name:     "complex query routes to reasoning tier",
			query:    "Explain the philosophical considerations of implementing AI systems",
			wantTier: TierComplex,
			want:     complex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &recordingFactory{general: general, complex: complex}
			router, err := NewRouter(factory)
			if err != nil {
				t.Fatalf("NewRouter() error = %v", err)
			}

			client, assessment, err := router.Select(tt.query)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if client != tt.want {
				t.Errorf("Select() returned wrong client")
			}
			if len(factory.calls) != 1 || factory.calls[0] != tt.wantTier {
				t.Errorf("factory calls = %v, want [%v]", factory.calls, tt.wantTier)
			}
			if assessment.IsComplex != (tt.wantTier == TierComplex) {
				t.Errorf("assessment.IsComplex = %v for tier %v", assessment.IsComplex, tt.wantTier)
			}
		})
	}
}

func TestRouterSelectFactoryError(t *testing.T) {
	factoryErr := errors.New("no API key configured")
	factory := &recordingFactory{err: factoryErr}

	router, err := NewRouter(factory)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	client, assessment, err := router.Select("What is a PDF?")
	if !errors.Is(err, factoryErr) {
		t.Errorf("Select() error = %v, want factory error unmodified", err)
	}
	if client != nil {
		t.Error("Select() returned a client alongside an error")
	}
	// The assessment is still meaningful when client creation fails.
	if assessment.IsComplex {
		t.Error("assessment.IsComplex = true for a simple query")
	}
}

func TestTierString(t *testing.T) {
	if TierGeneral.String() != "general" {
		t.Errorf("TierGeneral.String() = %q", TierGeneral.String())
	}
	if TierComplex.String() != "complex" {
		t.Errorf("TierComplex.String() = %q", TierComplex.String())
	}
}

func TestRouteHandlerPassesThrough(t *testing.T) {
	router, err := NewRouter(&recordingFactory{})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	var buf bytes.Buffer
	req := ragbase.NewRequest(context.Background(), strings.NewReader("What is a PDF?"))
	res := ragbase.NewResponse(&buf)

	if err := router.Route().ServeFlow(req, res); err != nil {
		t.Fatalf("ServeFlow() error = %v", err)
	}
	if buf.String() != "What is a PDF?" {
		t.Errorf("Route() altered input: %q", buf.String())
	}
}
