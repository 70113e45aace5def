package routing

import (
	"reflect"
	"strings"
	"testing"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	scorer, err := NewScorer()
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	return scorer
}

func TestAssessClassification(t *testing.T) {
	scorer := newTestScorer(t)

	tests := []struct {
		name        string
		query       string
		wantComplex bool
	}{
		{
			name:        "simple lookup question",
			query:       "What is a PDF?",
			wantComplex: false,
		},
		{
			name:        "short factual question",
			query:       "Who wrote this document?",
			wantComplex: false,
		},
		{
			name:        "philosophical question",
			query:       "Explain the philosophical considerations of implementing AI systems",
			wantComplex: true,
		},
		{
			name:        "analysis request",
			query:       "Analyze and evaluate the theory behind the proposed framework",
			wantComplex: true,
		},
		{
			name:        "ai ethics co-occurrence",
			query:       "What are the moral implications of AI in hiring?",
			wantComplex: true,
		},
		{
			name:        "empty query",
			query:       "",
			wantComplex: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Assess(tt.query)
			if got.IsComplex != tt.wantComplex {
				t.Errorf("Assess(%q).IsComplex = %v (score %.3f), want %v",
					tt.query, got.IsComplex, got.Score, tt.wantComplex)
			}
		})
	}
}

func TestAssessScoreBounds(t *testing.T) {
	scorer := newTestScorer(t)

	queries := []string{
		"",
		"hi",
		"What is a PDF?",
		"Explain the philosophical considerations of implementing AI systems",
		strings.Repeat("analyze the ethical implications of consciousness and free will ", 50),
	}

	for _, query := range queries {
		got := scorer.Assess(query)
		if got.Score < 0 || got.Score > 1 {
			t.Errorf("Assess(%.40q).Score = %f, want value in [0, 1]", query, got.Score)
		}
	}
}

func TestAssessDeterministic(t *testing.T) {
	scorer := newTestScorer(t)
	query := "Discuss the ethical implications of autonomous systems"

	first := scorer.Assess(query)
	second := scorer.Assess(query)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Assess() not deterministic: %+v vs %+v", first, second)
	}
}

func TestAssessMonotonicUnderAddedIndicators(t *testing.T) {
	scorer := newTestScorer(t)

	base := "What is a PDF?"
	extended := base + " Analyze the ethical implications."

	baseScore := scorer.Assess(base).Score
	extendedScore := scorer.Assess(extended).Score

	if extendedScore < baseScore {
		t.Errorf("adding indicators lowered score: %f -> %f", baseScore, extendedScore)
	}
}

func TestAssessLengthCountsRunes(t *testing.T) {
	scorer := newTestScorer(t)

	// Same character count, different byte count: the length signal must
	// not penalize or inflate multi-byte text.
	ascii := strings.Repeat("e", 40)
	accented := strings.Repeat("é", 40)

	if got, want := scorer.Assess(accented).Score, scorer.Assess(ascii).Score; got != want {
		t.Errorf("Assess(accented).Score = %f, want %f (rune-count parity)", got, want)
	}
}

func TestAssessMatchedIndicators(t *testing.T) {
	scorer := newTestScorer(t)

	got := scorer.Assess("Explain the philosophical considerations of implementing AI systems")

	weights := make(map[string]float64, len(got.Matched))
	for _, ind := range got.Matched {
		weights[ind.Term] = ind.Weight
	}
	if weights["philosophical"] != 3.0 {
		t.Errorf("philosophical weight = %f, want 3.0", weights["philosophical"])
	}
	if weights["considerations"] != 1.8 {
		t.Errorf("considerations weight = %f, want 1.8", weights["considerations"])
	}
}

func TestAssessTopicBoost(t *testing.T) {
	scorer := newTestScorer(t)

	tests := []struct {
		name      string
		query     string
		wantBoost bool
	}{
		{"ai with ethics term", "Is AI use here ethical?", true},
		{"ai without ethics term", "How fast is AI inference on this chip?", false},
		{"ethics term without ai", "Is this policy moral?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Assess(tt.query)
			var boosted bool
			for _, ind := range got.Matched {
				if ind.Term == TopicBoostTerm {
					boosted = true
					if ind.Weight != 1.5 {
						t.Errorf("boost weight = %f, want 1.5", ind.Weight)
					}
				}
			}
			if boosted != tt.wantBoost {
				t.Errorf("Assess(%q) boost = %v, want %v", tt.query, boosted, tt.wantBoost)
			}
		})
	}
}

func TestAssessDefaultWeights(t *testing.T) {
	scorer := newTestScorer(t)

	// "hypothesis" carries no override, so it contributes the base term
	// weight; "aspects of" is a phrase without an override.
	got := scorer.Assess("State the hypothesis covering all aspects of the data")

	weights := make(map[string]float64, len(got.Matched))
	for _, ind := range got.Matched {
		weights[ind.Term] = ind.Weight
	}
	if weights["hypothesis"] != 1.0 {
		t.Errorf("hypothesis weight = %f, want 1.0", weights["hypothesis"])
	}
	if weights["aspects of"] != 2.0 {
		t.Errorf("aspects of weight = %f, want 2.0", weights["aspects of"])
	}
}

func TestParseTablesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "terms: [unclosed"},
		{"missing divisors", "terms: [analyze]\nterm_weight: 1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTables([]byte(tt.data)); err == nil {
				t.Error("ParseTables() expected error")
			}
		})
	}
}

func TestAverageSentenceLength(t *testing.T) {
	scorer := newTestScorer(t)

	tests := []struct {
		name  string
		query string
		want  float64
	}{
		{"single sentence", "one two three four", 4},
		{"two sentences", "one two. one two three four.", 3},
		{"trailing punctuation only", "word!", 1},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorer.averageSentenceLength(tt.query); got != tt.want {
				t.Errorf("averageSentenceLength(%q) = %f, want %f", tt.query, got, tt.want)
			}
		})
	}
}
