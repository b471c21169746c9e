package biz

import (
	"context"
	"fmt"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docpipe/internal/docpipe/store"
	"github.com/kart-io/docpipe/internal/model"
	"github.com/kart-io/docpipe/pkg/utils/errors"
)

// stubChunkStore overrides nearest neighbor search with canned matches;
// everything else hits the real sqlite-backed store. The distance
// operator itself is exercised against a live database, not here.
type stubChunkStore struct {
	store.ChunkStore
	matches []*store.ChunkMatch
	err     error
	lastQ   *store.NNQuery
}

func (s *stubChunkStore) Search(_ context.Context, query *store.NNQuery) ([]*store.ChunkMatch, error) {
	s.lastQ = query
	return s.matches, s.err
}

type stubFactory struct {
	store.Factory
	chunks *stubChunkStore
}

func (f *stubFactory) Chunks() store.ChunkStore { return f.chunks }

func setupSearch(t *testing.T) (*stubFactory, *fakeProvider, *SearchService) {
	t.Helper()
	inner := setupFactory(t)
	f := &stubFactory{Factory: inner, chunks: &stubChunkStore{ChunkStore: inner.Chunks()}}
	provider := &fakeProvider{}
	return f, provider, NewSearchService(f, provider, nil, nil)
}

func seedChunks(t *testing.T, f *stubFactory, docID string, n int) []*model.DocumentChunk {
	t.Helper()
	ctx := context.Background()

	createDocument(t, f, &model.Document{
		ID: docID, OwnerID: 1, Filename: docID + ".txt", Status: model.StatusCompleted,
	})

	chunks := make([]*model.DocumentChunk, n)
	for i := range chunks {
		chunks[i] = &model.DocumentChunk{
			DocumentID: docID,
			ChunkIndex: i,
			Content:    fmt.Sprintf("chunk %d of %s", i, docID),
		}
	}
	require.NoError(t, f.chunks.ChunkStore.Replace(ctx, docID, chunks))
	return chunks
}

func matchesFor(chunks []*model.DocumentChunk, scores ...float64) []*store.ChunkMatch {
	matches := make([]*store.ChunkMatch, len(scores))
	for i, score := range scores {
		matches[i] = &store.ChunkMatch{DocumentChunk: *chunks[i], Similarity: score}
	}
	return matches
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	_, _, svc := setupSearch(t)

	_, err := svc.Search(context.Background(), &SearchRequest{Query: "   "})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPipelineInvalidQuery.Code))
}

func TestSearchRanksAndLogs(t *testing.T) {
	f, _, svc := setupSearch(t)
	ctx := context.Background()

	chunks := seedChunks(t, f, "doc-1", 3)
	f.chunks.matches = matchesFor(chunks, 0.95, 0.88, 0.71)

	hits, err := svc.Search(ctx, &SearchRequest{Query: "quarterly revenue", UserID: 7})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i, hit := range hits {
		assert.Equal(t, i+1, hit.Rank)
	}
	assert.Equal(t, 0.95, hits[0].Score)

	// Defaults applied to the store query.
	require.NotNil(t, f.chunks.lastQ)
	assert.Equal(t, 10, f.chunks.lastQ.Limit)
	assert.InDelta(t, 0.7, f.chunks.lastQ.Threshold, 1e-9)
	assert.Len(t, f.chunks.lastQ.Embedding, model.EmbeddingDim)

	// The call is logged with results.
	total, queries, err := f.SearchLogs().ListQueries(ctx, 7, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, queries, 1)
	assert.Equal(t, "quarterly revenue", queries[0].QueryText)
	assert.Equal(t, 3, queries[0].ResultsCount)
}

func TestSearchOverrides(t *testing.T) {
	f, _, svc := setupSearch(t)

	threshold := 0.4
	logOff := false
	_, err := svc.Search(context.Background(), &SearchRequest{
		Query:      "cost structure",
		DocumentID: "doc-9",
		Limit:      3,
		Threshold:  &threshold,
		LogQuery:   &logOff,
	})
	require.NoError(t, err)

	require.NotNil(t, f.chunks.lastQ)
	assert.Equal(t, 3, f.chunks.lastQ.Limit)
	assert.InDelta(t, 0.4, f.chunks.lastQ.Threshold, 1e-9)
	assert.Equal(t, "doc-9", f.chunks.lastQ.DocumentID)

	total, _, err := f.SearchLogs().ListQueries(context.Background(), 0, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSearchEmbeddingFailureDegrades(t *testing.T) {
	f, provider, svc := setupSearch(t)
	ctx := context.Background()
	provider.singleErr = fmt.Errorf("provider down")

	hits, err := svc.Search(ctx, &SearchRequest{Query: "anything", UserID: 3})
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Still logged, with zero results and no query embedding.
	total, queries, err := f.SearchLogs().ListQueries(ctx, 3, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, queries, 1)
	assert.Zero(t, queries[0].ResultsCount)
}

func TestSearchStoreErrorDegrades(t *testing.T) {
	f, _, svc := setupSearch(t)
	ctx := context.Background()
	f.chunks.err = fmt.Errorf("connection reset")

	hits, err := svc.Search(ctx, &SearchRequest{Query: "anything", UserID: 5})
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Still logged, with zero results.
	total, queries, err := f.SearchLogs().ListQueries(ctx, 5, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, queries, 1)
	assert.Zero(t, queries[0].ResultsCount)
}

func TestSimilarChunksStoreErrorDegrades(t *testing.T) {
	f, _, svc := setupSearch(t)
	ctx := context.Background()

	chunks := seedChunks(t, f, "doc-1", 1)
	vec := pgvector.NewVector(testVector(0.5))
	require.NoError(t, f.chunks.ChunkStore.UpdateEmbedding(ctx, "doc-1", 0, vec))

	f.chunks.err = fmt.Errorf("connection reset")

	hits, err := svc.SimilarChunks(ctx, chunks[0].ID, 5, false)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSimilarChunks(t *testing.T) {
	f, _, svc := setupSearch(t)
	ctx := context.Background()

	chunks := seedChunks(t, f, "doc-1", 3)
	vec := pgvector.NewVector(testVector(0.5))
	require.NoError(t, f.chunks.ChunkStore.UpdateEmbedding(ctx, "doc-1", 0, vec))
	seed, err := f.chunks.ChunkStore.Get(ctx, chunks[0].ID)
	require.NoError(t, err)

	// The seed matches itself at 1.0; it must be filtered out.
	f.chunks.matches = []*store.ChunkMatch{
		{DocumentChunk: *seed, Similarity: 1.0},
		{DocumentChunk: *chunks[1], Similarity: 0.9},
		{DocumentChunk: *chunks[2], Similarity: 0.8},
	}

	hits, err := svc.SimilarChunks(ctx, seed.ID, 2, false)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, chunks[1].ID, hits[0].Chunk.ID)
	assert.Equal(t, 1, hits[0].Rank)
	assert.Equal(t, 2, hits[1].Rank)
	assert.Empty(t, f.chunks.lastQ.ExcludeDocumentID)

	_, err = svc.SimilarChunks(ctx, seed.ID, 2, true)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", f.chunks.lastQ.ExcludeDocumentID)
}

func TestSimilarChunksNoEmbedding(t *testing.T) {
	f, _, svc := setupSearch(t)

	chunks := seedChunks(t, f, "doc-1", 1)

	_, err := svc.SimilarChunks(context.Background(), chunks[0].ID, 5, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrChunkNoEmbedding.Code))
}

func TestSimilarChunksMissing(t *testing.T) {
	_, _, svc := setupSearch(t)

	_, err := svc.SimilarChunks(context.Background(), 424242, 5, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrChunkNotFound.Code))
}

func TestListDocumentChunks(t *testing.T) {
	f, _, svc := setupSearch(t)
	ctx := context.Background()

	seedChunks(t, f, "doc-1", 4)

	chunks, err := svc.ListDocumentChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, chunks, 4)

	_, err = svc.ListDocumentChunks(ctx, "doc-missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDocumentNotFound.Code))
}
