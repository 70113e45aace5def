// Package routing provides heuristic query complexity scoring and
// complexity-based model selection.
//
// The scorer grades a query on three normalized signals (length, weighted
// indicator matches, sentence structure) and classifies it against a
// threshold. The router maps that classification to a model tier and asks
// a client factory for the matching client.
package routing

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed indicators.yaml
var indicatorsYAML []byte

// Tables holds the scoring configuration: indicator lists, weight
// overrides, normalization divisors, and the score blend.
//
// The zero value is not usable; load defaults with DefaultTables or
// unmarshal a custom YAML document into it.
type Tables struct {
	// Terms are single indicators matched by substring against the
	// lowercased query. Order determines match reporting order.
	Terms []string `yaml:"terms"`

	// Phrases are multi-word indicators with a higher default weight.
	Phrases []string `yaml:"phrases"`

	// Weights overrides the default weight for specific indicators.
	Weights map[string]float64 `yaml:"weights"`

	// AITerms and EthicsTerms trigger TopicBoost when one of each
	// co-occurs in a query.
	AITerms     []string `yaml:"ai_terms"`
	EthicsTerms []string `yaml:"ethics_terms"`
	TopicBoost  float64  `yaml:"topic_boost"`

	// Default weights for indicators without an override.
	TermWeight   float64 `yaml:"term_weight"`
	PhraseWeight float64 `yaml:"phrase_weight"`

	// Normalization divisors for the three signals.
	IndicatorDivisor float64 `yaml:"indicator_divisor"`
	LengthDivisor    float64 `yaml:"length_divisor"`
	SentenceDivisor  float64 `yaml:"sentence_divisor"`

	// Blend coefficients for the composite score.
	LengthBlend    float64 `yaml:"length_blend"`
	IndicatorBlend float64 `yaml:"indicator_blend"`
	SentenceBlend  float64 `yaml:"sentence_blend"`

	// Threshold above which a query is classified complex.
	Threshold float64 `yaml:"threshold"`
}

var (
	defaultTablesOnce sync.Once
	defaultTables     *Tables
	defaultTablesErr  error
)

// DefaultTables returns the built-in scoring tables.
//
// The tables are parsed from the embedded YAML document once and shared
// between callers; treat the result as read-only.
func DefaultTables() (*Tables, error) {
	defaultTablesOnce.Do(func() {
		defaultTables, defaultTablesErr = ParseTables(indicatorsYAML)
	})
	return defaultTables, defaultTablesErr
}

// ParseTables unmarshals a YAML document into scoring tables.
//
// Returns an error when the document is malformed or leaves a required
// numeric field unset.
func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse scoring tables: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Tables) validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"term_weight", t.TermWeight},
		{"phrase_weight", t.PhraseWeight},
		{"indicator_divisor", t.IndicatorDivisor},
		{"length_divisor", t.LengthDivisor},
		{"sentence_divisor", t.SentenceDivisor},
		{"threshold", t.Threshold},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("scoring tables: %s must be positive, got %g", c.name, c.value)
		}
	}
	if t.LengthBlend+t.IndicatorBlend+t.SentenceBlend <= 0 {
		return fmt.Errorf("scoring tables: blend coefficients sum to zero")
	}
	return nil
}
