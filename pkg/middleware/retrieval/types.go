// Package retrieval provides document retrieval against pluggable vector
// stores, plus context assembly for question answering: retrieved chunks
// are joined into a single context block with links stripped out.
package retrieval

import (
	"context"
	"time"
)

// Document represents a document chunk with metadata.
type Document struct {
	ID       string         `json:"id"`                 // Unique chunk identifier
	Content  string         `json:"content"`            // Chunk text content
	Metadata map[string]any `json:"metadata,omitempty"` // Source file, page, etc.
	Score    float64        `json:"score,omitempty"`    // Similarity score (0-1, higher is more similar)
	Created  time.Time      `json:"created,omitempty"`  // Creation timestamp
	Updated  time.Time      `json:"updated,omitempty"`  // Last update timestamp
}

// SearchResult represents the result of a similarity search.
type SearchResult struct {
	Documents []Document `json:"documents"` // Matching documents ranked by score
	Query     string     `json:"query"`     // Original search query
	Total     int        `json:"total"`     // Total number of matches found
	Threshold float64    `json:"threshold"` // Similarity threshold used
}

// EmbeddingVector represents a vector embedding.
type EmbeddingVector []float32

// SearchQuery represents a similarity search query.
type SearchQuery struct {
	Text      string          `json:"text"`             // Query text
	Vector    EmbeddingVector `json:"vector,omitempty"` // Pre-computed query vector
	Threshold float64         `json:"threshold"`        // Similarity threshold (0-1)
	Limit     int             `json:"limit,omitempty"`  // Maximum results to return
	Filter    map[string]any  `json:"filter,omitempty"` // Metadata filters
}

// EmbeddingProvider generates vector embeddings for text.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) (EmbeddingVector, error)
}

// VectorStore is the interface for vector database backends.
//
// Example:
//
//	store, _ := pgvector.New(&pgvector.Config{ConnectionString: dsn})
//	retriever := retrieval.NewRetriever(store)
type VectorStore interface {
	// Search performs similarity search against the store
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)

	// Store adds documents to the store
	Store(ctx context.Context, documents []Document) error

	// Delete removes documents from the store
	Delete(ctx context.Context, ids []string) error

	// Health checks if the store is available
	Health(ctx context.Context) error

	// Close releases any resources held by the client
	Close() error
}
