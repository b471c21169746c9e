package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingDim is the embedding dimensionality for the reference provider
// (OpenAI text-embedding-3-small). Callers must validate vectors against
// this before persisting them.
const EmbeddingDim = 1536

// DocumentChunk is a bounded segment of a document's extracted text, the
// unit of embedding and retrieval. Chunk indices for a document are
// contiguous from 0; the whole set is replaced on reprocessing.
type DocumentChunk struct {
	ID         int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	DocumentID string `json:"document_id" gorm:"type:varchar(26);not null;uniqueIndex:uk_document_chunk,priority:1"`
	ChunkIndex int    `json:"chunk_index" gorm:"not null;uniqueIndex:uk_document_chunk,priority:2"`
	Content    string `json:"content" gorm:"type:text;not null"`
	// Embedding is nil until embedding generation succeeds for this chunk.
	Embedding  *pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	TokenCount int              `json:"token_count" gorm:"default:0"`
	CharCount  int              `json:"char_count" gorm:"default:0"`
	CreatedAt  time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for DocumentChunk.
func (DocumentChunk) TableName() string {
	return "document_chunks"
}

// HasEmbedding reports whether the chunk carries a persisted vector.
func (c *DocumentChunk) HasEmbedding() bool {
	return c.Embedding != nil
}

// SearchQuery is an immutable log record of one semantic search call.
type SearchQuery struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(26)"`
	UserID    uint64 `json:"user_id,omitempty" gorm:"index;default:0"`
	QueryText string `json:"query_text" gorm:"type:text;not null"`
	// QueryEmbedding is kept for analytics; nil when embedding failed.
	QueryEmbedding *pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	ResultsCount   int              `json:"results_count" gorm:"default:0"`
	SearchTimeMs   int64            `json:"search_time_ms" gorm:"default:0"`
	CreatedAt      time.Time        `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for SearchQuery.
func (SearchQuery) TableName() string {
	return "search_queries"
}

// SearchResult links one search query to one retrieved chunk. Ranks are
// 1-indexed and unique within a query.
type SearchResult struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	SearchQueryID   string    `json:"search_query_id" gorm:"type:varchar(26);not null;uniqueIndex:uk_query_rank,priority:1"`
	ChunkID         int64     `json:"chunk_id" gorm:"not null;index"`
	SimilarityScore float64   `json:"similarity_score" gorm:"not null"`
	Rank            int       `json:"rank" gorm:"not null;uniqueIndex:uk_query_rank,priority:2"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for SearchResult.
func (SearchResult) TableName() string {
	return "search_results"
}
