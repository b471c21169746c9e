// Package store provides persistence for documents, chunks, and search
// logs. The relational stores are gorm-backed; vector NN queries run on
// the pgvector extension, optionally mirrored to a Milvus index.
package store

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/kart-io/docpipe/internal/model"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Documents() DocumentStore
	Chunks() ChunkStore
	SearchLogs() SearchLogStore
	Close() error
}

// DocumentStore defines the document storage interface.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	Update(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, id string) (*model.Document, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.Document, error)
	// ListByStatusAndMode returns documents matching both filters; an
	// empty mode matches any mode.
	ListByStatusAndMode(ctx context.Context, status model.ProcessingStatus, mode model.ProcessingMode) ([]*model.Document, error)
	CountByStatus(ctx context.Context) (map[model.ProcessingStatus]int64, error)
}

// NNQuery describes a nearest-neighbour lookup over chunk embeddings.
type NNQuery struct {
	// Embedding is the query vector.
	Embedding []float32
	// DocumentID restricts matches to a single document when non-empty.
	DocumentID string
	// OwnerID restricts matches to one owner's documents when non-zero.
	OwnerID uint64
	// ExcludeDocumentID removes one document from consideration.
	ExcludeDocumentID string
	// Threshold is the minimum cosine similarity, applied as a hard filter.
	Threshold float64
	// Limit caps the number of matches.
	Limit int
}

// ChunkMatch pairs a chunk with its cosine similarity to the query vector.
type ChunkMatch struct {
	model.DocumentChunk `gorm:"embedded"`
	Similarity          float64 `gorm:"column:similarity" json:"similarity"`
}

// ChunkStore defines the chunk storage interface.
type ChunkStore interface {
	// Replace atomically swaps a document's chunk set: existing rows are
	// deleted and the new set inserted in one transaction.
	Replace(ctx context.Context, documentID string, chunks []*model.DocumentChunk) error
	// UpdateEmbedding persists one chunk's vector, keyed by document and
	// chunk index.
	UpdateEmbedding(ctx context.Context, documentID string, chunkIndex int, embedding pgvector.Vector) error
	Get(ctx context.Context, id int64) (*model.DocumentChunk, error)
	ListByDocument(ctx context.Context, documentID string) ([]*model.DocumentChunk, error)
	DeleteByDocument(ctx context.Context, documentID string) error
	// Search runs a cosine NN query over chunks that have embeddings.
	Search(ctx context.Context, query *NNQuery) ([]*ChunkMatch, error)
	Count(ctx context.Context) (total, embedded int64, err error)
}

// SearchLogStore defines the best-effort search audit log interface.
type SearchLogStore interface {
	CreateQuery(ctx context.Context, q *model.SearchQuery) error
	CreateResults(ctx context.Context, results []*model.SearchResult) error
	GetQuery(ctx context.Context, id string) (*model.SearchQuery, error)
	ListQueries(ctx context.Context, userID uint64, offset, limit int) (int64, []*model.SearchQuery, error)
}
