package protocols

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	queries []string
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, text)
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	filtered   *Record
	unfiltered *Record
	results    []SearchResult
	err        error

	filteredCalls   int
	unfilteredCalls int
	searchLimit     int
}

func (f *fakeIndex) TopByTaskCode(_ context.Context, _ string, _ []float32) (*Record, error) {
	f.filteredCalls++
	return f.filtered, f.err
}

func (f *fakeIndex) TopUnfiltered(_ context.Context, _ []float32) (*Record, error) {
	f.unfilteredCalls++
	return f.unfiltered, f.err
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, _ SearchFilters, limit int) ([]SearchResult, error) {
	f.searchLimit = limit
	return f.results, f.err
}

func TestResolveExactMatch(t *testing.T) {
	idx := &fakeIndex{filtered: &Record{TaskCode: "BGM-104", TaskName: "Severe Hyperglycemia"}}
	emb := &fakeEmbedder{}
	resolver := NewResolver(idx, emb)

	rec, err := resolver.Resolve(context.Background(), "BGM-104")
	require.NoError(t, err)
	assert.Equal(t, "BGM-104", rec.TaskCode)
	assert.Equal(t, 1, idx.filteredCalls)
	assert.Equal(t, 0, idx.unfilteredCalls)
	assert.Equal(t, []string{"task code BGM-104"}, emb.queries)
}

func TestResolveFallsBackToUnfiltered(t *testing.T) {
	idx := &fakeIndex{unfiltered: &Record{TaskCode: "BGM-103", TaskName: "Hyperglycemia"}}
	emb := &fakeEmbedder{}
	resolver := NewResolver(idx, emb)

	rec, err := resolver.Resolve(context.Background(), "BGM-104")
	require.NoError(t, err)
	assert.Equal(t, "BGM-103", rec.TaskCode)
	assert.Equal(t, 1, idx.filteredCalls)
	assert.Equal(t, 1, idx.unfilteredCalls)
	assert.Equal(t, []string{"task code BGM-104", "BGM-104"}, emb.queries)
}

func TestResolveEmptyIndexReturnsPlaceholder(t *testing.T) {
	resolver := NewResolver(&fakeIndex{}, &fakeEmbedder{})

	rec, err := resolver.Resolve(context.Background(), "BGM-104")
	require.NoError(t, err)
	assert.Equal(t, "N/A", rec.TaskCode)
	assert.Equal(t, "N/A", rec.TaskName)
	assert.Empty(t, rec.FullText)
}

func TestResolvePropagatesIndexError(t *testing.T) {
	idx := &fakeIndex{err: errors.New("connection refused")}
	resolver := NewResolver(idx, &fakeEmbedder{})

	_, err := resolver.Resolve(context.Background(), "BGM-104")
	assert.ErrorContains(t, err, "connection refused")
}

func TestResolvePropagatesEmbedderError(t *testing.T) {
	resolver := NewResolver(&fakeIndex{}, &fakeEmbedder{err: errors.New("rate limited")})

	_, err := resolver.Resolve(context.Background(), "BGM-104")
	assert.ErrorContains(t, err, "rate limited")
}

func TestSearchOverfetchesAndTruncates(t *testing.T) {
	results := make([]SearchResult, 7)
	for i := range results {
		results[i] = SearchResult{Record: Record{TaskCode: "BP-10" + string(rune('0'+i))}, Score: 1.0 - float64(i)*0.1}
	}
	idx := &fakeIndex{results: results}
	resolver := NewResolver(idx, &fakeEmbedder{})

	got, err := resolver.Search(context.Background(), "high blood pressure", SearchFilters{}, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, idx.searchLimit)
	assert.Len(t, got, 5)
	assert.Equal(t, "BP-100", got[0].TaskCode)
}
