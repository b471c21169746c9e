package errors

import "google.golang.org/grpc/codes"

// Pipeline error codes use service code 20 (business service range 20-79).

var (
	// Request errors (category 01)
	ErrPipelineInvalidQuery   = Register(New(MakeCode(ServicePipeline, CategoryRequest, 1), 400, codes.InvalidArgument, "Invalid search query", "搜索查询无效"))
	ErrPipelineInvalidChunkID = Register(New(MakeCode(ServicePipeline, CategoryRequest, 2), 400, codes.InvalidArgument, "Invalid chunk identifier", "分块标识无效"))

	// Resource errors (category 04)
	ErrDocumentNotFound = Register(New(MakeCode(ServicePipeline, CategoryResource, 1), 404, codes.NotFound, "Document not found", "文档不存在"))
	ErrChunkNotFound    = Register(New(MakeCode(ServicePipeline, CategoryResource, 2), 404, codes.NotFound, "Chunk not found", "分块不存在"))
	ErrChunkNoEmbedding = Register(New(MakeCode(ServicePipeline, CategoryResource, 3), 404, codes.NotFound, "Chunk has no embedding", "分块缺少向量"))

	// Conflict errors (category 05)
	ErrDocumentProcessing = Register(New(MakeCode(ServicePipeline, CategoryConflict, 1), 409, codes.FailedPrecondition, "Document is already being processed", "文档正在处理中"))

	// Processing errors (category 07)
	ErrChunkingFailed   = Register(New(MakeCode(ServicePipeline, CategoryInternal, 1), 500, codes.Internal, "Document chunking failed", "文档分块失败"))
	ErrEmbeddingFailed  = Register(New(MakeCode(ServicePipeline, CategoryInternal, 2), 500, codes.Internal, "Embedding generation failed", "向量生成失败"))
	ErrProcessingFailed = Register(New(MakeCode(ServicePipeline, CategoryInternal, 3), 500, codes.Internal, "Document processing failed", "文档处理失败"))
	ErrExtractFailed    = Register(New(MakeCode(ServicePipeline, CategoryInternal, 4), 500, codes.Internal, "Text extraction failed", "文本提取失败"))
	ErrSearchFailed     = Register(New(MakeCode(ServicePipeline, CategoryInternal, 5), 500, codes.Internal, "Semantic search failed", "语义搜索失败"))
)

var (
	// Embedding provider errors (third-party service code 90)
	ErrProviderUnavailable = Register(New(MakeCode(ServiceThirdPartyEmbedding, CategoryNetwork, 1), 503, codes.Unavailable, "Embedding provider unavailable", "向量服务不可用"))
	ErrProviderTimeout     = Register(New(MakeCode(ServiceThirdPartyEmbedding, CategoryTimeout, 1), 504, codes.DeadlineExceeded, "Embedding provider timeout", "向量服务超时"))
)
