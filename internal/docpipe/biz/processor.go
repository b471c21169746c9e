package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"github.com/pgvector/pgvector-go"

	"github.com/kart-io/docpipe/internal/docpipe/store"
	"github.com/kart-io/docpipe/internal/model"
	"github.com/kart-io/docpipe/internal/pkg/notify"
	"github.com/kart-io/docpipe/pkg/llm"
)

// ContentProvider supplies raw document bytes at processing time. File
// storage is a collaborator; the pipeline never touches it directly.
type ContentProvider interface {
	Content(ctx context.Context, doc *model.Document) ([]byte, error)
}

// ContentProviderFunc adapts a function to the ContentProvider interface.
type ContentProviderFunc func(ctx context.Context, doc *model.Document) ([]byte, error)

// Content implements ContentProvider.
func (f ContentProviderFunc) Content(ctx context.Context, doc *model.Document) ([]byte, error) {
	return f(ctx, doc)
}

// ProcessorConfig controls mode decisions and retry behavior.
type ProcessorConfig struct {
	// AutoProcess globally enables automatic processing. When false,
	// every new document is assigned manual mode.
	AutoProcess bool
	// BatchSizeThreshold routes documents above this byte size to batch
	// mode regardless of type.
	BatchSizeThreshold int64
	// ImmediateTypes is the allow-list of types processed right away.
	ImmediateTypes []string
	// BatchTypes is the list of types deferred to the periodic sweep.
	BatchTypes []string
	// MaxRetries bounds automatic retries of failed processing.
	MaxRetries int
	// RetryDelay is the fixed delay before an automatic retry.
	RetryDelay time.Duration
}

// DefaultProcessorConfig returns the default orchestration parameters.
func DefaultProcessorConfig() *ProcessorConfig {
	return &ProcessorConfig{
		AutoProcess:        true,
		BatchSizeThreshold: 5 * 1024 * 1024,
		ImmediateTypes:     []string{"income_statement", "balance_sheet"},
		BatchTypes:         []string{"other", "cashflow"},
		MaxRetries:         3,
		RetryDelay:         5 * time.Minute,
	}
}

// ProcessorParams bundles the orchestrator's collaborators.
type ProcessorParams struct {
	Store     store.Factory
	Chunker   *Chunker
	Embedder  *llm.BatchEmbedder
	Extractor TextExtractor
	Content   ContentProvider
	Runner    JobRunner
	Notifier  notify.Notifier
	// Index is the optional Milvus mirror; nil disables mirroring.
	Index  *store.MilvusIndex
	Config *ProcessorConfig
}

// Processor drives documents through the pending, processing and
// completed/failed states. One Processor serves the whole service;
// per-document jobs run on the configured JobRunner.
type Processor struct {
	store     store.Factory
	chunker   *Chunker
	embedder  *llm.BatchEmbedder
	extractor TextExtractor
	content   ContentProvider
	runner    JobRunner
	notifier  notify.Notifier
	index     *store.MilvusIndex
	config    *ProcessorConfig
}

// NewProcessor creates the processing orchestrator.
func NewProcessor(p ProcessorParams) *Processor {
	if p.Config == nil {
		p.Config = DefaultProcessorConfig()
	}
	if p.Notifier == nil {
		p.Notifier = notify.NewLogNotifier()
	}
	if p.Runner == nil {
		p.Runner = NewPoolRunner()
	}
	return &Processor{
		store:     p.Store,
		chunker:   p.Chunker,
		embedder:  p.Embedder,
		extractor: p.Extractor,
		content:   p.Content,
		runner:    p.Runner,
		notifier:  p.Notifier,
		index:     p.Index,
		config:    p.Config,
	}
}

// DecideMode computes the processing mode for a new document. The
// decision is made once at creation time and never re-evaluated unless
// the mode is explicitly cleared.
func (p *Processor) DecideMode(doc *model.Document) model.ProcessingMode {
	if !p.config.AutoProcess {
		return model.ModeManual
	}
	if doc.SizeBytes > p.config.BatchSizeThreshold {
		return model.ModeBatch
	}
	if contains(p.config.ImmediateTypes, doc.DocType) {
		return model.ModeImmediate
	}
	if contains(p.config.BatchTypes, doc.DocType) {
		return model.ModeBatch
	}
	return model.ModeImmediate
}

// OnDocumentCreated is the pipeline entry point for a newly created
// document: it assigns a mode if the caller left it unset, then acts on
// the mode. Immediate documents get an async job; batch documents stay
// pending for the sweep; manual documents are left alone.
func (p *Processor) OnDocumentCreated(ctx context.Context, doc *model.Document) error {
	if doc.Mode == "" {
		doc.Mode = p.DecideMode(doc)
		if err := p.store.Documents().Update(ctx, doc); err != nil {
			return fmt.Errorf("failed to persist processing mode: %w", err)
		}
		logger.Infow("assigned processing mode", "document", doc.ID, "mode", doc.Mode)
	}

	switch doc.Mode {
	case model.ModeImmediate:
		return p.dispatch(ctx, doc.ID)
	case model.ModeBatch:
		logger.Infow("document scheduled for batch processing", "document", doc.ID)
		return nil
	case model.ModeManual:
		logger.Infow("document in manual mode, skipping auto-processing", "document", doc.ID)
		return nil
	default:
		logger.Warnw("unknown processing mode, defaulting to immediate",
			"document", doc.ID, "mode", doc.Mode)
		return p.dispatch(ctx, doc.ID)
	}
}

// Reprocess re-runs the pipeline for one document on operator request.
func (p *Processor) Reprocess(ctx context.Context, docID string, skipEmbeddings bool) error {
	doc, err := p.store.Documents().Get(ctx, docID)
	if err != nil {
		return err
	}
	if doc.Status == model.StatusProcessing {
		return fmt.Errorf("document %s is already being processed", docID)
	}

	doc.Status = model.StatusPending
	if err := p.store.Documents().Update(ctx, doc); err != nil {
		return err
	}

	return p.runner.Submit(ctx, func() {
		_ = p.Process(context.Background(), docID, skipEmbeddings)
	})
}

// RetryFailed is the bulk operator action: every failed document goes
// back to pending with its retry counter reset, then is re-enqueued.
func (p *Processor) RetryFailed(ctx context.Context) (int, error) {
	docs, err := p.store.Documents().ListByStatusAndMode(ctx, model.StatusFailed, "")
	if err != nil {
		return 0, err
	}

	retried := 0
	for _, doc := range docs {
		doc.Status = model.StatusPending
		doc.RetryCount = 0
		doc.LastError = ""
		if err := p.store.Documents().Update(ctx, doc); err != nil {
			logger.Errorw("failed to reset document for retry", "document", doc.ID, "error", err)
			continue
		}
		if err := p.dispatch(ctx, doc.ID); err != nil {
			logger.Errorw("failed to enqueue retried document", "document", doc.ID, "error", err)
			continue
		}
		retried++
	}

	logger.Infow("bulk retry of failed documents", "selected", len(docs), "enqueued", retried)
	return retried, nil
}

// Process is the job body: extract, chunk, persist, embed. The error
// return exists for sequential callers (sweep, tests); async submitters
// ignore it because failures are recorded on the document itself.
func (p *Processor) Process(ctx context.Context, docID string, skipEmbeddings bool) error {
	doc, err := p.store.Documents().Get(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", docID, err)
	}

	doc.Status = model.StatusProcessing
	if err := p.store.Documents().Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to mark document processing: %w", err)
	}

	logger.Infow("processing document",
		"document", doc.ID, "filename", doc.Filename, "skip_embeddings", skipEmbeddings)

	if err := p.run(ctx, doc, skipEmbeddings); err != nil {
		p.fail(ctx, doc, err)
		return err
	}

	now := time.Now()
	doc.Status = model.StatusCompleted
	doc.ProcessedAt = &now
	doc.LastError = ""
	if err := p.store.Documents().Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to mark document completed: %w", err)
	}

	logger.Infow("document processed", "document", doc.ID)
	return nil
}

func (p *Processor) run(ctx context.Context, doc *model.Document, skipEmbeddings bool) error {
	content, err := p.content.Content(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to read document content: %w", err)
	}

	text, err := p.extractor.Extract(ctx, doc, content)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}

	chunks := p.chunker.ChunkText(text)
	if len(chunks) == 0 {
		return fmt.Errorf("chunking produced no chunks")
	}

	rows := make([]*model.DocumentChunk, len(chunks))
	for i, chunk := range chunks {
		rows[i] = &model.DocumentChunk{
			DocumentID: doc.ID,
			ChunkIndex: chunk.Index,
			Content:    chunk.Content,
			TokenCount: chunk.TokenCount,
			CharCount:  chunk.CharCount,
		}
	}

	if err := p.store.Chunks().Replace(ctx, doc.ID, rows); err != nil {
		return fmt.Errorf("failed to replace chunks: %w", err)
	}

	logger.Infow("chunks persisted", "document", doc.ID, "chunks", len(rows))

	if skipEmbeddings {
		return nil
	}
	return p.embed(ctx, doc, rows)
}

// embed generates vectors for the freshly persisted chunk set,
// persisting each vector as it lands. Any unembedded chunk fails the
// whole document; vectors already written stay in place for the retry.
func (p *Processor) embed(ctx context.Context, doc *model.Document, rows []*model.DocumentChunk) error {
	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Content
	}

	embeddings, err := p.embedder.EmbedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding aborted: %w", err)
	}

	missing := 0
	for i, embedding := range embeddings {
		if embedding == nil {
			missing++
			continue
		}
		if len(embedding) != model.EmbeddingDim {
			return fmt.Errorf("chunk %d: embedding dimension %d, want %d",
				rows[i].ChunkIndex, len(embedding), model.EmbeddingDim)
		}

		vec := pgvector.NewVector(embedding)
		if err := p.store.Chunks().UpdateEmbedding(ctx, doc.ID, rows[i].ChunkIndex, vec); err != nil {
			return fmt.Errorf("failed to persist embedding for chunk %d: %w", rows[i].ChunkIndex, err)
		}
		rows[i].Embedding = &vec
	}

	if missing > 0 {
		return fmt.Errorf("embedding failed for %d of %d chunks", missing, len(rows))
	}

	p.mirror(ctx, doc, rows)
	return nil
}

// mirror pushes the chunk vectors to the Milvus index. Best-effort: a
// mirror failure is logged, never fails the document.
func (p *Processor) mirror(ctx context.Context, doc *model.Document, rows []*model.DocumentChunk) {
	if p.index == nil {
		return
	}
	if err := p.index.ReplaceDocument(ctx, doc, rows); err != nil {
		logger.Errorw("failed to mirror chunk vectors", "document", doc.ID, "error", err)
	}
}

// fail records the failure on the document and schedules an automatic
// retry while attempts remain; once exhausted, the operator is notified.
func (p *Processor) fail(ctx context.Context, doc *model.Document, cause error) {
	doc.Status = model.StatusFailed
	doc.LastError = cause.Error()
	doc.RetryCount++
	if err := p.store.Documents().Update(ctx, doc); err != nil {
		logger.Errorw("failed to record processing failure", "document", doc.ID, "error", err)
		return
	}

	logger.Errorw("document processing failed",
		"document", doc.ID, "retry_count", doc.RetryCount, "error", cause)

	if doc.RetryCount < p.config.MaxRetries {
		docID := doc.ID
		logger.Infow("scheduling automatic retry",
			"document", docID, "delay", p.config.RetryDelay.String(), "attempt", doc.RetryCount+1)
		p.runner.Schedule(p.config.RetryDelay, func() {
			_ = p.Process(context.Background(), docID, false)
		})
		return
	}

	subject := fmt.Sprintf("document processing failed: %s", doc.Filename)
	body := fmt.Sprintf("Document %s (%s) failed after %d attempts.\n\nLast error: %s\n",
		doc.ID, doc.Filename, doc.RetryCount, doc.LastError)
	if err := p.notifier.Notify(ctx, subject, body); err != nil {
		logger.Errorw("failed to deliver failure notification", "document", doc.ID, "error", err)
	}
}

// dispatch submits an async processing job for the document.
func (p *Processor) dispatch(ctx context.Context, docID string) error {
	err := p.runner.Submit(ctx, func() {
		_ = p.Process(context.Background(), docID, false)
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue processing job: %w", err)
	}
	logger.Infow("processing job enqueued", "document", docID)
	return nil
}

// ListDocuments returns one page of documents, newest first, along
// with the total document count.
func (p *Processor) ListDocuments(ctx context.Context, page, pageSize int) (int64, []*model.Document, error) {
	offset := (page - 1) * pageSize
	return p.store.Documents().List(ctx, offset, pageSize)
}

// PipelineStats summarizes corpus state for the stats endpoint.
type PipelineStats struct {
	Documents      map[model.ProcessingStatus]int64 `json:"documents"`
	Chunks         int64                            `json:"chunks"`
	EmbeddedChunks int64                            `json:"embedded_chunks"`
}

// Stats reports document counts by status and chunk/vector totals.
func (p *Processor) Stats(ctx context.Context) (*PipelineStats, error) {
	byStatus, err := p.store.Documents().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	total, embedded, err := p.store.Chunks().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}

	return &PipelineStats{
		Documents:      byStatus,
		Chunks:         total,
		EmbeddedChunks: embedded,
	}, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
