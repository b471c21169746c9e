package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/docpipe/internal/docpipe/biz"
	"github.com/kart-io/docpipe/internal/pkg/httputils"
	"github.com/kart-io/docpipe/pkg/utils/errors"
	"github.com/kart-io/docpipe/pkg/utils/response"
)

// DocumentHandler handles document processing operations.
type DocumentHandler struct {
	processor *biz.Processor
	sweeper   *biz.Sweeper
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(processor *biz.Processor, sweeper *biz.Sweeper) *DocumentHandler {
	return &DocumentHandler{processor: processor, sweeper: sweeper}
}

// ReprocessRequest controls a manual reprocess.
type ReprocessRequest struct {
	// SkipEmbeddings rebuilds chunks without regenerating vectors.
	SkipEmbeddings bool `json:"skip_embeddings"`
}

// Reprocess re-runs the pipeline for one document.
func (h *DocumentHandler) Reprocess(c *gin.Context) {
	var req ReprocessRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
			return
		}
	}

	if err := h.processor.Reprocess(c.Request.Context(), c.Param("id"), req.SkipEmbeddings); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, gin.H{"document_id": c.Param("id"), "status": "enqueued"})
}

// List returns documents with pagination, newest first.
func (h *DocumentHandler) List(c *gin.Context) {
	page, pageSize, err := pagination(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	total, docs, err := h.processor.ListDocuments(c.Request.Context(), page, pageSize)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, response.Page(docs, total, page, pageSize))
}

// RetryFailed re-enqueues every failed document with a fresh retry budget.
func (h *DocumentHandler) RetryFailed(c *gin.Context) {
	retried, err := h.processor.RetryFailed(c.Request.Context())
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, gin.H{"retried": retried})
}

// Sweep triggers one batch sweep immediately.
func (h *DocumentHandler) Sweep(c *gin.Context) {
	result, err := h.sweeper.SweepOnce(c.Request.Context())
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, result)
}

// Stats reports pipeline-wide document and chunk counts.
func (h *DocumentHandler) Stats(c *gin.Context) {
	stats, err := h.processor.Stats(c.Request.Context())
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, stats)
}
