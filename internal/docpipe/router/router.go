// Package router provides document pipeline routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/docpipe/internal/docpipe/handler"
)

// Register registers the pipeline routes on the engine.
func Register(engine *gin.Engine, searchHandler *handler.SearchHandler, documentHandler *handler.DocumentHandler, healthHandler *handler.HealthHandler) {
	logger.Info("Registering pipeline routes...")

	engine.GET("/healthz", healthHandler.Healthz)

	v1 := engine.Group("/v1")
	{
		v1.POST("/search", searchHandler.Search)
		v1.GET("/search/history", searchHandler.History)

		chunks := v1.Group("/chunks")
		{
			chunks.GET("/:id", searchHandler.GetChunk)
			chunks.GET("/:id/similar", searchHandler.Similar)
		}

		documents := v1.Group("/documents")
		{
			documents.GET("", documentHandler.List)
			documents.GET("/:id/chunks", searchHandler.ListDocumentChunks)
			documents.POST("/:id/reprocess", documentHandler.Reprocess)
		}

		// Operator actions live off the documents subtree so static
		// segments never collide with the :id wildcard.
		pipeline := v1.Group("/pipeline")
		{
			pipeline.POST("/retry-failed", documentHandler.RetryFailed)
			pipeline.POST("/sweep", documentHandler.Sweep)
		}

		v1.GET("/stats", documentHandler.Stats)
	}

	logger.Info("HTTP routes registered")
}
