package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// Defaults for search options.
const (
	DefaultThreshold = 0.0
	DefaultLimit     = 4

	// ContextSeparator delimits document chunks in the assembled context.
	ContextSeparator = "\n---\n"
)

// linkPattern matches http(s) URLs and bare www links. Links add noise
// to model context without carrying answerable content.
var linkPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

// SearchOptions configures a retriever.
type SearchOptions struct {
	Threshold float64        // Minimum similarity score (0-1)
	Limit     int            // Maximum documents to retrieve
	Filter    map[string]any // Metadata filters passed to the store
}

// Retriever fetches relevant documents for a query from a vector store.
type Retriever struct {
	store VectorStore
	opts  SearchOptions
}

// NewRetriever creates a retriever with default options.
func NewRetriever(store VectorStore, opts ...SearchOptions) *Retriever {
	options := SearchOptions{
		Threshold: DefaultThreshold,
		Limit:     DefaultLimit,
	}
	if len(opts) > 0 {
		if opts[0].Threshold > 0 {
			options.Threshold = opts[0].Threshold
		}
		if opts[0].Limit > 0 {
			options.Limit = opts[0].Limit
		}
		options.Filter = opts[0].Filter
	}
	return &Retriever{store: store, opts: options}
}

// Store returns the underlying vector store.
func (r *Retriever) Store() VectorStore {
	return r.store
}

// Retrieve fetches the documents most relevant to a query.
//
// Input: the raw user query
// Output: matching documents ranked by score, best first
// Behavior: an empty result is not an error; the model answers from an
// empty context.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	result, err := r.store.Search(ctx, SearchQuery{
		Text:      query,
		Threshold: r.opts.Threshold,
		Limit:     r.opts.Limit,
		Filter:    r.opts.Filter,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	return result.Documents, nil
}

// Context creates a flow stage that replaces the query with an assembled
// context block followed by the query itself.
//
// Input: the raw user query
// Output: "<context>\n\nQuestion: <query>"
// Behavior: BUFFERED - reads the whole query before searching
func (r *Retriever) Context() ragbase.Handler {
	return ragbase.HandlerFunc(func(req *ragbase.Request, res *ragbase.Response) error {
		var query string
		if err := ragbase.Read(req, &query); err != nil {
			return err
		}

		docs, err := r.Retrieve(req.Context, query)
		if err != nil {
			return err
		}

		block := BuildContext(docs)
		return ragbase.Write(res, block+"\n\nQuestion: "+query)
	})
}

// BuildContext assembles retrieved documents into a single context block.
//
// Chunks are joined with the context separator and stripped of links.
func BuildContext(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		content := strings.TrimSpace(RemoveLinks(doc.Content))
		if content == "" {
			continue
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, ContextSeparator)
}

// RemoveLinks strips http(s) URLs and www links from text.
func RemoveLinks(text string) string {
	return linkPattern.ReplaceAllString(text, "")
}
