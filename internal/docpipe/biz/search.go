package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"github.com/pgvector/pgvector-go"

	"github.com/kart-io/docpipe/internal/docpipe/store"
	"github.com/kart-io/docpipe/internal/model"
	"github.com/kart-io/docpipe/internal/pkg/idutil"
	"github.com/kart-io/docpipe/pkg/llm"
	"github.com/kart-io/docpipe/pkg/utils/errors"
)

// SearchConfig controls semantic search defaults.
type SearchConfig struct {
	// DefaultLimit caps results when the request does not set one.
	DefaultLimit int
	// DefaultThreshold is the minimum cosine similarity when the request
	// does not set one. Zero disables the filter.
	DefaultThreshold float64
}

// DefaultSearchConfig returns the default search parameters.
func DefaultSearchConfig() *SearchConfig {
	return &SearchConfig{
		DefaultLimit:     10,
		DefaultThreshold: 0.7,
	}
}

// SearchRequest is one semantic search call.
type SearchRequest struct {
	// Query is the natural language query text. Required.
	Query string `json:"query" binding:"required"`
	// UserID attributes the query in the search log. Zero means anonymous.
	UserID uint64 `json:"user_id,omitempty"`
	// DocumentID restricts matches to one document when set.
	DocumentID string `json:"document_id,omitempty"`
	// Limit overrides the default result cap when positive.
	Limit int `json:"limit,omitempty"`
	// Threshold overrides the default similarity floor when set.
	Threshold *float64 `json:"threshold,omitempty"`
	// LogQuery disables search logging when explicitly false.
	LogQuery *bool `json:"log_query,omitempty"`
}

// Hit is one retrieved chunk with its similarity score.
type Hit struct {
	Chunk *model.DocumentChunk `json:"chunk"`
	// Score is cosine similarity in [0, 1], higher is closer.
	Score float64 `json:"score"`
	// Rank is 1-indexed position in the result set.
	Rank int `json:"rank"`
}

// SearchService answers semantic queries over embedded chunks. Nearest
// neighbor search runs against pgvector, or against the Milvus mirror
// when one is configured.
type SearchService struct {
	store    store.Factory
	provider llm.EmbeddingProvider
	index    *store.MilvusIndex
	config   *SearchConfig
}

// NewSearchService creates the search service. index may be nil.
func NewSearchService(factory store.Factory, provider llm.EmbeddingProvider, index *store.MilvusIndex, config *SearchConfig) *SearchService {
	if config == nil {
		config = DefaultSearchConfig()
	}
	return &SearchService{
		store:    factory,
		provider: provider,
		index:    index,
		config:   config,
	}
}

// Search embeds the query and returns the nearest chunks. Embedding and
// vector store failures degrade to an empty result set so a flaky
// backend never turns search into an error page.
func (s *SearchService) Search(ctx context.Context, req *SearchRequest) ([]*Hit, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.ErrPipelineInvalidQuery
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	threshold := s.config.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	start := time.Now()

	vec, err := s.provider.EmbedSingle(ctx, req.Query)
	if err != nil {
		logger.Warnw("query embedding failed, returning empty results",
			"provider", s.provider.Name(), "error", err)
		s.log(ctx, req, nil, nil, time.Since(start))
		return []*Hit{}, nil
	}

	query := &store.NNQuery{
		Embedding:  vec,
		DocumentID: req.DocumentID,
		OwnerID:    req.UserID,
		Threshold:  threshold,
		Limit:      limit,
	}

	hits, err := s.nearest(ctx, query)
	if err != nil {
		logger.Warnw("vector store search failed, returning empty results", "error", err)
		s.log(ctx, req, vec, nil, time.Since(start))
		return []*Hit{}, nil
	}

	elapsed := time.Since(start)
	logger.Infow("semantic search",
		"results", len(hits), "limit", limit, "threshold", threshold, "elapsed", elapsed.String())

	s.log(ctx, req, vec, hits, elapsed)
	return hits, nil
}

// SimilarChunks finds the nearest neighbors of a stored chunk, seeded
// with its persisted embedding. excludeSameDocument drops hits from the
// seed chunk's own document.
func (s *SearchService) SimilarChunks(ctx context.Context, chunkID int64, limit int, excludeSameDocument bool) ([]*Hit, error) {
	chunk, err := s.store.Chunks().Get(ctx, chunkID)
	if err != nil {
		return nil, errors.ErrChunkNotFound.WithCause(err)
	}
	if chunk.Embedding == nil {
		return nil, errors.ErrChunkNoEmbedding
	}

	if limit <= 0 {
		limit = s.config.DefaultLimit
	}

	query := &store.NNQuery{
		Embedding: chunk.Embedding.Slice(),
		// Fetch one extra row because the seed chunk matches itself.
		Limit: limit + 1,
	}
	if excludeSameDocument {
		query.ExcludeDocumentID = chunk.DocumentID
	}

	hits, err := s.nearest(ctx, query)
	if err != nil {
		logger.Warnw("vector store search failed, returning empty results",
			"chunk", chunkID, "error", err)
		return []*Hit{}, nil
	}

	filtered := make([]*Hit, 0, limit)
	for _, hit := range hits {
		if hit.Chunk.ID == chunkID {
			continue
		}
		if len(filtered) == limit {
			break
		}
		hit.Rank = len(filtered) + 1
		filtered = append(filtered, hit)
	}
	return filtered, nil
}

// GetChunk returns one chunk by ID.
func (s *SearchService) GetChunk(ctx context.Context, chunkID int64) (*model.DocumentChunk, error) {
	chunk, err := s.store.Chunks().Get(ctx, chunkID)
	if err != nil {
		return nil, errors.ErrChunkNotFound.WithCause(err)
	}
	return chunk, nil
}

// ListDocumentChunks returns a document's chunks in index order.
func (s *SearchService) ListDocumentChunks(ctx context.Context, docID string) ([]*model.DocumentChunk, error) {
	if _, err := s.store.Documents().Get(ctx, docID); err != nil {
		return nil, errors.ErrDocumentNotFound.WithCause(err)
	}
	return s.store.Chunks().ListByDocument(ctx, docID)
}

// History returns one page of logged queries, newest first. A zero
// userID returns queries from all users.
func (s *SearchService) History(ctx context.Context, userID uint64, page, pageSize int) (int64, []*model.SearchQuery, error) {
	offset := (page - 1) * pageSize
	return s.store.SearchLogs().ListQueries(ctx, userID, offset, pageSize)
}

// nearest runs the nearest neighbor query against whichever backend is
// configured and normalizes the result to ranked hits.
func (s *SearchService) nearest(ctx context.Context, query *store.NNQuery) ([]*Hit, error) {
	if s.index != nil {
		return s.nearestMilvus(ctx, query)
	}

	matches, err := s.store.Chunks().Search(ctx, query)
	if err != nil {
		return nil, err
	}

	hits := make([]*Hit, 0, len(matches))
	for i, match := range matches {
		chunk := match.DocumentChunk
		hits = append(hits, &Hit{
			Chunk: &chunk,
			Score: match.Similarity,
			Rank:  i + 1,
		})
	}
	return hits, nil
}

// nearestMilvus queries the mirror index, then resolves the winning
// chunk IDs back through the relational store for full rows.
func (s *SearchService) nearestMilvus(ctx context.Context, query *store.NNQuery) ([]*Hit, error) {
	matches, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	hits := make([]*Hit, 0, len(matches))
	for _, match := range matches {
		chunk, err := s.store.Chunks().Get(ctx, match.ChunkID)
		if err != nil {
			// The index can briefly trail the store; skip stale entries.
			logger.Warnw("index hit missing from store", "chunk", match.ChunkID, "error", err)
			continue
		}
		hits = append(hits, &Hit{
			Chunk: chunk,
			Score: match.Score,
			Rank:  len(hits) + 1,
		})
	}
	return hits, nil
}

// log writes the search log best-effort; logging failures never affect
// the search response.
func (s *SearchService) log(ctx context.Context, req *SearchRequest, vec []float32, hits []*Hit, elapsed time.Duration) {
	if req.LogQuery != nil && !*req.LogQuery {
		return
	}

	record := &model.SearchQuery{
		ID:           idutil.NewID(),
		UserID:       req.UserID,
		QueryText:    req.Query,
		ResultsCount: len(hits),
		SearchTimeMs: elapsed.Milliseconds(),
	}
	if vec != nil {
		v := pgvector.NewVector(vec)
		record.QueryEmbedding = &v
	}

	if err := s.store.SearchLogs().CreateQuery(ctx, record); err != nil {
		logger.Warnw("failed to log search query", "error", err)
		return
	}

	if len(hits) == 0 {
		return
	}
	results := make([]*model.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = &model.SearchResult{
			SearchQueryID:   record.ID,
			ChunkID:         hit.Chunk.ID,
			SimilarityScore: hit.Score,
			Rank:            hit.Rank,
		}
	}
	if err := s.store.SearchLogs().CreateResults(ctx, results); err != nil {
		logger.Warnw("failed to log search results", "query", record.ID, "error", err)
	}
}
