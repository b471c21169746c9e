package store

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/docpipe/internal/model"
)

// defaultNNLimit caps NN results when the caller does not set a limit.
const defaultNNLimit = 10

type chunks struct {
	db *gorm.DB
}

func newChunks(db *gorm.DB) *chunks {
	return &chunks{db}
}

// Replace swaps a document's chunk set inside one transaction. Readers
// never observe a partially replaced set.
func (c *chunks) Replace(ctx context.Context, documentID string, newChunks []*model.DocumentChunk) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&model.DocumentChunk{}).Error; err != nil {
			return fmt.Errorf("delete existing chunks: %w", err)
		}
		if len(newChunks) == 0 {
			return nil
		}
		if err := tx.Create(&newChunks).Error; err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	})
}

// UpdateEmbedding persists one chunk's vector as soon as it lands, keyed
// by document and chunk index.
func (c *chunks) UpdateEmbedding(ctx context.Context, documentID string, chunkIndex int, embedding pgvector.Vector) error {
	result := c.db.WithContext(ctx).Model(&model.DocumentChunk{}).
		Where("document_id = ? AND chunk_index = ?", documentID, chunkIndex).
		Update("embedding", &embedding)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Get retrieves a chunk by ID.
func (c *chunks) Get(ctx context.Context, id int64) (*model.DocumentChunk, error) {
	var chunk model.DocumentChunk
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&chunk).Error; err != nil {
		return nil, err
	}
	return &chunk, nil
}

// ListByDocument returns a document's chunks in index order.
func (c *chunks) ListByDocument(ctx context.Context, documentID string) ([]*model.DocumentChunk, error) {
	var list []*model.DocumentChunk
	err := c.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteByDocument removes all chunks for a document.
func (c *chunks) DeleteByDocument(ctx context.Context, documentID string) error {
	return c.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.DocumentChunk{}).Error
}

// Search runs a cosine nearest-neighbour query. Similarity is derived
// from pgvector cosine distance as 1 - distance/2, so the threshold
// translates to a maximum distance filter and ordering by distance
// yields descending similarity.
func (c *chunks) Search(ctx context.Context, query *NNQuery) ([]*ChunkMatch, error) {
	if len(query.Embedding) == 0 {
		return nil, fmt.Errorf("query embedding is empty")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultNNLimit
	}

	vec := pgvector.NewVector(query.Embedding)

	q := c.db.WithContext(ctx).Model(&model.DocumentChunk{}).
		Select("document_chunks.*, 1 - (document_chunks.embedding <=> ?) / 2 AS similarity", vec).
		Where("document_chunks.embedding IS NOT NULL")

	if query.DocumentID != "" {
		q = q.Where("document_chunks.document_id = ?", query.DocumentID)
	}
	if query.ExcludeDocumentID != "" {
		q = q.Where("document_chunks.document_id <> ?", query.ExcludeDocumentID)
	}
	if query.OwnerID != 0 {
		q = q.Joins("JOIN documents ON documents.id = document_chunks.document_id").
			Where("documents.owner_id = ?", query.OwnerID)
	}
	if query.Threshold > 0 {
		// similarity >= threshold  <=>  distance <= (1 - threshold) * 2
		q = q.Where("(document_chunks.embedding <=> ?) <= ?", vec, (1-query.Threshold)*2)
	}

	var matches []*ChunkMatch
	err := q.Order(clause.OrderBy{
		Expression: clause.Expr{
			SQL:                "document_chunks.embedding <=> ?",
			Vars:               []interface{}{vec},
			WithoutParentheses: true,
		},
	}).Limit(limit).Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("nearest-neighbour query: %w", err)
	}

	return matches, nil
}

// Count returns the total chunk count and the count with embeddings.
func (c *chunks) Count(ctx context.Context) (total, embedded int64, err error) {
	if err = c.db.WithContext(ctx).Model(&model.DocumentChunk{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = c.db.WithContext(ctx).Model(&model.DocumentChunk{}).
		Where("embedding IS NOT NULL").Count(&embedded).Error; err != nil {
		return 0, 0, err
	}
	return total, embedded, nil
}
