package routing

import (
	"strings"
	"unicode/utf8"
)

// Indicator is one matched complexity signal and the weight it contributed.
type Indicator struct {
	Term   string
	Weight float64
}

// Assessment is the result of scoring one query.
type Assessment struct {
	// Score is the composite complexity score in [0, 1].
	Score float64

	// IsComplex reports whether Score exceeded the classification threshold.
	IsComplex bool

	// Matched lists the indicators found in the query, in table order.
	// The topic co-occurrence boost is reported as a synthetic entry.
	Matched []Indicator
}

// Scorer grades query complexity from weighted lexical signals.
//
// Scoring is deterministic and free of I/O: the same query always yields
// the same assessment. A Scorer is safe for concurrent use.
type Scorer struct {
	tables *Tables
}

// NewScorer creates a scorer backed by the built-in tables.
func NewScorer() (*Scorer, error) {
	tables, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	return &Scorer{tables: tables}, nil
}

// NewScorerWithTables creates a scorer backed by custom tables.
func NewScorerWithTables(tables *Tables) *Scorer {
	return &Scorer{tables: tables}
}

// TopicBoostTerm names the synthetic indicator reported when the AI and
// ethics term groups co-occur in a query.
const TopicBoostTerm = "ai+ethics topic"

// Assess scores a query and classifies it as complex or general.
//
// Input: the raw user query
// Output: composite score, classification, and the matched indicators
// Behavior:
//   - Length signal: min(runeCount(query)/lengthDivisor, 1)
//   - Indicator signal: weighted substring matches against the lowercased
//     query, plus the topic co-occurrence boost, normalized by the
//     indicator divisor and clamped to 1
//   - Sentence signal: min(avgWordsPerSentence/sentenceDivisor, 1)
//
// The three signals are blended and compared against the threshold.
func (s *Scorer) Assess(query string) Assessment {
	t := s.tables
	lowered := strings.ToLower(query)

	// Length counts characters, not bytes, so non-ASCII queries score
	// the same as equally long ASCII ones.
	lengthScore := clamp01(float64(utf8.RuneCountInString(query)) / t.LengthDivisor)

	var weight float64
	var matched []Indicator
	for _, term := range t.Terms {
		if strings.Contains(lowered, term) {
			w := t.indicatorWeight(term, t.TermWeight)
			weight += w
			matched = append(matched, Indicator{Term: term, Weight: w})
		}
	}
	for _, phrase := range t.Phrases {
		if strings.Contains(lowered, phrase) {
			w := t.indicatorWeight(phrase, t.PhraseWeight)
			weight += w
			matched = append(matched, Indicator{Term: phrase, Weight: w})
		}
	}
	if containsAny(lowered, t.AITerms) && containsAny(lowered, t.EthicsTerms) {
		weight += t.TopicBoost
		matched = append(matched, Indicator{Term: TopicBoostTerm, Weight: t.TopicBoost})
	}
	indicatorScore := clamp01(weight / t.IndicatorDivisor)

	sentenceScore := clamp01(s.averageSentenceLength(query) / t.SentenceDivisor)

	score := t.LengthBlend*lengthScore +
		t.IndicatorBlend*indicatorScore +
		t.SentenceBlend*sentenceScore

	return Assessment{
		Score:     score,
		IsComplex: score > t.Threshold,
		Matched:   matched,
	}
}

// Threshold returns the classification threshold in effect.
func (s *Scorer) Threshold() float64 {
	return s.tables.Threshold
}

func (t *Tables) indicatorWeight(term string, fallback float64) float64 {
	if w, ok := t.Weights[term]; ok {
		return w
	}
	return fallback
}

// averageSentenceLength returns the mean word count across sentences.
// Sentences are split on '.', '!' and '?'; empty segments are dropped
// and a query with no terminator counts as a single sentence.
func (s *Scorer) averageSentenceLength(query string) float64 {
	segments := strings.FieldsFunc(query, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var sentences int
	var words int
	for _, segment := range segments {
		n := len(strings.Fields(segment))
		if n == 0 {
			continue
		}
		sentences++
		words += n
	}
	if sentences == 0 {
		sentences = 1
	}
	return float64(words) / float64(sentences)
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
