package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/docpipe/internal/model"
	"github.com/kart-io/docpipe/pkg/component/milvus"
)

// MilvusIndex mirrors chunk embeddings into a Milvus collection so NN
// lookups can be served off the relational store. The postgres rows
// remain the source of truth; the mirror is rebuilt per document on
// reprocessing.
type MilvusIndex struct {
	client     *milvus.Client
	collection string
}

// NewMilvusIndex creates a mirror index over the given collection.
func NewMilvusIndex(client *milvus.Client, collection string) *MilvusIndex {
	return &MilvusIndex{client: client, collection: collection}
}

// EnsureCollection creates the mirror collection if it does not exist.
func (m *MilvusIndex) EnsureCollection(ctx context.Context) error {
	schema := &milvus.CollectionSchema{
		Name:        m.collection,
		Description: "chunk embedding mirror",
		Dimension:   model.EmbeddingDim,
		MetaFields: []milvus.MetaField{
			{Name: "chunk_id", DataType: entity.FieldTypeInt64},
			{Name: "document_id", DataType: entity.FieldTypeVarChar, MaxLen: 26},
			{Name: "owner_id", DataType: entity.FieldTypeInt64},
			{Name: "chunk_index", DataType: entity.FieldTypeInt64},
		},
	}
	return m.client.CreateCollection(ctx, schema)
}

// ReplaceDocument rebuilds the mirror entries for one document. Chunks
// without an embedding are skipped. The owning document supplies the
// owner scope that search filters on.
func (m *MilvusIndex) ReplaceDocument(ctx context.Context, doc *model.Document, chunks []*model.DocumentChunk) error {
	expr := fmt.Sprintf("document_id == %q", doc.ID)
	if err := m.client.DeleteByExpr(ctx, m.collection, expr); err != nil {
		return fmt.Errorf("failed to clear mirror entries: %w", err)
	}

	embeddings := make([][]float32, 0, len(chunks))
	chunkIDs := make([]any, 0, len(chunks))
	documentIDs := make([]any, 0, len(chunks))
	ownerIDs := make([]any, 0, len(chunks))
	chunkIndexes := make([]any, 0, len(chunks))

	for _, chunk := range chunks {
		if chunk.Embedding == nil {
			continue
		}
		embeddings = append(embeddings, chunk.Embedding.Slice())
		chunkIDs = append(chunkIDs, chunk.ID)
		documentIDs = append(documentIDs, chunk.DocumentID)
		ownerIDs = append(ownerIDs, int64(doc.OwnerID))
		chunkIndexes = append(chunkIndexes, int64(chunk.ChunkIndex))
	}

	if len(embeddings) == 0 {
		return nil
	}

	data := &milvus.InsertData{
		Embeddings: embeddings,
		Metadata: map[string][]any{
			"chunk_id":    chunkIDs,
			"document_id": documentIDs,
			"owner_id":    ownerIDs,
			"chunk_index": chunkIndexes,
		},
	}

	if _, err := m.client.Insert(ctx, m.collection, data); err != nil {
		return fmt.Errorf("failed to mirror chunk vectors: %w", err)
	}
	return nil
}

// IndexMatch is one NN hit from the mirror index.
type IndexMatch struct {
	ChunkID    int64
	DocumentID string
	Score      float64
}

// mirrorFilterExpr translates NNQuery equality filters into a Milvus
// boolean expression. Empty when the query carries no filters.
func mirrorFilterExpr(query *NNQuery) string {
	var conds []string
	if query.DocumentID != "" {
		conds = append(conds, fmt.Sprintf("document_id == %q", query.DocumentID))
	}
	if query.OwnerID != 0 {
		conds = append(conds, fmt.Sprintf("owner_id == %d", query.OwnerID))
	}
	if query.ExcludeDocumentID != "" {
		conds = append(conds, fmt.Sprintf("document_id != %q", query.ExcludeDocumentID))
	}
	return strings.Join(conds, " and ")
}

// mirrorScore maps a raw cosine metric score in [-1, 1] onto the [0, 1]
// similarity scale the relational path reports (1 - distance/2), so
// thresholds and logged scores mean the same thing on both backends.
func mirrorScore(raw float32) float64 {
	return (1 + float64(raw)) / 2
}

// Search runs a cosine NN lookup against the mirror. Filters translate
// to a Milvus boolean expression; the caller resolves chunk IDs back to
// rows in the relational store.
func (m *MilvusIndex) Search(ctx context.Context, query *NNQuery) ([]*IndexMatch, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultNNLimit
	}

	results, err := m.client.SearchWithFilter(ctx, m.collection, query.Embedding, mirrorFilterExpr(query), limit,
		[]string{"chunk_id", "document_id"})
	if err != nil {
		return nil, fmt.Errorf("failed to search mirror index: %w", err)
	}

	matches := make([]*IndexMatch, 0, len(results))
	for _, r := range results {
		score := mirrorScore(r.Score)
		if query.Threshold > 0 && score < query.Threshold {
			continue
		}

		match := &IndexMatch{Score: score}
		if v, ok := r.Metadata["chunk_id"].(int64); ok {
			match.ChunkID = v
		}
		if v, ok := r.Metadata["document_id"].(string); ok {
			match.DocumentID = v
		}
		matches = append(matches, match)
	}

	return matches, nil
}

// Stats returns the number of mirrored vectors.
func (m *MilvusIndex) Stats(ctx context.Context) (int64, error) {
	return m.client.GetCollectionStats(ctx, m.collection)
}

// Close closes the underlying Milvus connection.
func (m *MilvusIndex) Close(ctx context.Context) error {
	return m.client.Close(ctx)
}
