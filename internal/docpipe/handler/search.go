// Package handler provides HTTP handlers for the document pipeline.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docpipe/internal/docpipe/biz"
	"github.com/kart-io/docpipe/internal/pkg/httputils"
	"github.com/kart-io/docpipe/pkg/utils/errors"
	"github.com/kart-io/docpipe/pkg/utils/response"
)

// SearchHandler handles semantic search requests.
type SearchHandler struct {
	service *biz.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service *biz.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search runs a semantic query over embedded chunks.
func (h *SearchHandler) Search(c *gin.Context) {
	var req biz.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	hits, err := h.service.Search(c.Request.Context(), &req)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, gin.H{"hits": hits, "count": len(hits)})
}

// GetChunk returns one chunk by ID.
func (h *SearchHandler) GetChunk(c *gin.Context) {
	id, err := chunkID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	chunk, err := h.service.GetChunk(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, chunk)
}

// Similar returns the nearest neighbors of a stored chunk.
func (h *SearchHandler) Similar(c *gin.Context) {
	id, err := chunkID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("limit must be a non-negative integer"), nil)
			return
		}
	}

	// Same-document hits are near-duplicates; excluded unless asked for.
	excludeSameDocument := c.DefaultQuery("exclude_same_document", "true") != "false"

	hits, err := h.service.SimilarChunks(c.Request.Context(), id, limit, excludeSameDocument)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, gin.H{"hits": hits, "count": len(hits)})
}

type chunkListItem struct {
	ID           int64  `json:"id"`
	ChunkIndex   int    `json:"chunk_index"`
	Content      string `json:"content"`
	TokenCount   int    `json:"token_count"`
	CharCount    int    `json:"char_count"`
	HasEmbedding bool   `json:"has_embedding"`
}

// ListDocumentChunks returns a document's chunks in index order.
func (h *SearchHandler) ListDocumentChunks(c *gin.Context) {
	chunks, err := h.service.ListDocumentChunks(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	items := make([]chunkListItem, 0, len(chunks))
	for _, chunk := range chunks {
		items = append(items, chunkListItem{
			ID:           chunk.ID,
			ChunkIndex:   chunk.ChunkIndex,
			Content:      chunk.Content,
			TokenCount:   chunk.TokenCount,
			CharCount:    chunk.CharCount,
			HasEmbedding: chunk.HasEmbedding(),
		})
	}

	httputils.WriteResponse(c, nil, gin.H{"chunks": items, "count": len(items)})
}

// History returns logged queries with pagination, newest first. The
// optional user_id parameter narrows the listing to one user.
func (h *SearchHandler) History(c *gin.Context) {
	page, pageSize, err := pagination(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var userID uint64
	if raw := c.Query("user_id"); raw != "" {
		if userID, err = strconv.ParseUint(raw, 10, 64); err != nil {
			httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("user_id must be an integer"), nil)
			return
		}
	}

	total, queries, err := h.service.History(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, response.Page(queries, total, page, pageSize))
}

func chunkID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrPipelineInvalidChunkID
	}
	return id, nil
}
