package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hbollon/go-edlib"
)

// InMemoryStore is a VectorStore backed by lexical similarity.
//
// Documents are scored against the query text with string similarity
// instead of embeddings, which makes it useful for tests and small
// corpora without an embedding service. Safe for concurrent use.
type InMemoryStore struct {
	mu        sync.RWMutex
	documents map[string]Document
	algorithm edlib.Algorithm
}

// NewInMemoryStore creates an empty in-memory store using cosine
// similarity over character n-grams.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		documents: make(map[string]Document),
		algorithm: edlib.Cosine,
	}
}

var _ VectorStore = (*InMemoryStore)(nil)

// Search scores every stored document against the query text.
func (s *InMemoryStore) Search(_ context.Context, query SearchQuery) (*SearchResult, error) {
	if query.Text == "" {
		return nil, fmt.Errorf("query text is required for in-memory search")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lowered := strings.ToLower(query.Text)
	matches := make([]Document, 0, len(s.documents))
	for _, doc := range s.documents {
		score, err := edlib.StringsSimilarity(lowered, strings.ToLower(doc.Content), s.algorithm)
		if err != nil {
			return nil, fmt.Errorf("similarity computation failed: %w", err)
		}
		if float64(score) <= query.Threshold && query.Threshold > 0 {
			continue
		}
		doc.Score = float64(score)
		matches = append(matches, doc)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID // Stable order for equal scores
	})

	if query.Limit > 0 && len(matches) > query.Limit {
		matches = matches[:query.Limit]
	}

	return &SearchResult{
		Documents: matches,
		Query:     query.Text,
		Total:     len(matches),
		Threshold: query.Threshold,
	}, nil
}

// Store adds documents, replacing any with the same ID.
func (s *InMemoryStore) Store(_ context.Context, documents []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range documents {
		if doc.ID == "" {
			return fmt.Errorf("document %d has no ID", i)
		}
		s.documents[doc.ID] = doc
	}
	return nil
}

// Delete removes documents by ID.
func (s *InMemoryStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.documents, id)
	}
	return nil
}

// Health always succeeds for the in-memory store.
func (s *InMemoryStore) Health(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

// Len returns the number of stored documents.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
