package protocols

import (
	"context"
	"fmt"

	"github.com/vitalpath/vitalpath/internal/metrics"
)

// Index is the subset of the protocol index the resolver needs.
type Index interface {
	TopByTaskCode(ctx context.Context, taskCode string, embedding []float32) (*Record, error)
	TopUnfiltered(ctx context.Context, embedding []float32) (*Record, error)
	Search(ctx context.Context, embedding []float32, filters SearchFilters, limit int) ([]SearchResult, error)
}

// Embedder turns text into a vector for index queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Resolver finds the protocol for a task code. The index is populated by
// a separate offline load step and may be incomplete or inconsistently
// keyed, so resolution degrades in two steps before giving up: an exact
// task_code-filtered query, then an unfiltered semantic query with the
// bare code as text, then an all-"N/A" placeholder. Index and embedding
// errors are never swallowed.
type Resolver struct {
	index    Index
	embedder Embedder
}

// NewResolver creates a protocol resolver.
func NewResolver(index Index, embedder Embedder) *Resolver {
	return &Resolver{index: index, embedder: embedder}
}

// Resolve returns the best protocol for the task code, or a placeholder
// when the index has nothing usable.
func (r *Resolver) Resolve(ctx context.Context, taskCode string) (Record, error) {
	embedding, err := r.embedder.Embed(ctx, "task code "+taskCode)
	if err != nil {
		return Record{}, fmt.Errorf("embedding protocol query for %s: %w", taskCode, err)
	}

	rec, err := r.index.TopByTaskCode(ctx, taskCode, embedding)
	if err != nil {
		return Record{}, err
	}
	if rec != nil {
		metrics.ProtocolResolutions.WithLabelValues("exact").Inc()
		return *rec, nil
	}

	embedding, err = r.embedder.Embed(ctx, taskCode)
	if err != nil {
		return Record{}, fmt.Errorf("embedding fallback query for %s: %w", taskCode, err)
	}

	rec, err = r.index.TopUnfiltered(ctx, embedding)
	if err != nil {
		return Record{}, err
	}
	if rec != nil {
		metrics.ProtocolResolutions.WithLabelValues("fallback").Inc()
		return *rec, nil
	}

	metrics.ProtocolResolutions.WithLabelValues("placeholder").Inc()
	return Placeholder(), nil
}

// Search runs a free-text semantic search over the index. It overfetches
// before truncating so post-filter result counts stay close to topK.
func (r *Resolver) Search(ctx context.Context, query string, filters SearchFilters, topK int) ([]SearchResult, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding search query: %w", err)
	}

	results, err := r.index.Search(ctx, embedding, filters, topK*2)
	if err != nil {
		return nil, err
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
