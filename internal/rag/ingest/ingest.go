package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/internal/rag/chunker"
	"github.com/akolanti/BrandVoice/internal/rag/embedding"
	"github.com/akolanti/BrandVoice/internal/rag/vectorDB"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

// StepFunc observes pipeline progress; it may be nil.
type StepFunc func(step jobModel.InternalStatus)

type Result struct {
	DocumentId string
	BrandId    string
	ChunkCount int
}

// Pipeline runs chunk -> embed -> upsert -> prune for one document and owns the
// document's status while it does so.
type Pipeline struct {
	documents commonModels.DocumentStore
	embedder  embedding.Embedder
	index     vectorDB.VectorIndex
	lock      jobModel.DocumentLock
	chunking  config.ChunkingSettings
	logger    *logger_i.Logger
}

func NewPipeline(documents commonModels.DocumentStore, em embedding.Embedder, index vectorDB.VectorIndex,
	lock jobModel.DocumentLock, chunking config.ChunkingSettings) *Pipeline {
	return &Pipeline{
		documents: documents,
		embedder:  em,
		index:     index,
		lock:      lock,
		chunking:  chunking,
		logger:    logger_i.NewLogger("document_ingestion"),
	}
}

// Run ingests documentId. Once started it is detached from ctx cancellation and
// bounded only by the job execution timeout. A concurrent run for the same document
// fails with ErrIngestionInProgress and leaves the status alone.
func (p *Pipeline) Run(ctx context.Context, documentId string, onStep StepFunc) (Result, error) {
	if onStep == nil {
		onStep = func(jobModel.InternalStatus) {}
	}
	log := p.logger.WithTrace(ctx).With("documentId", documentId)
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.JobExecutionTimeout)
	defer cancel()

	onStep(jobModel.IngestInit)
	acquired, err := p.lock.Acquire(runCtx, documentId, config.DocumentLockTTL)
	if err != nil {
		log.Error("could not acquire ingestion lock", "error", err)
		return Result{DocumentId: documentId}, fmt.Errorf("acquire ingestion lock: %w", err)
	}
	if !acquired {
		log.Info("ingestion already running for document")
		return Result{DocumentId: documentId}, commonModels.ErrIngestionInProgress
	}
	defer func() {
		if err := p.lock.Release(context.WithoutCancel(runCtx), documentId); err != nil {
			log.Warn("could not release ingestion lock", "error", err)
		}
	}()

	doc, err := p.documents.GetDocument(runCtx, documentId)
	if err != nil {
		if !errors.Is(err, commonModels.ErrDocumentNotFound) {
			err = fmt.Errorf("%w: %w", commonModels.ErrDocumentNotFound, err)
		}
		return p.fail(runCtx, log, Result{DocumentId: documentId}, err)
	}
	res := Result{DocumentId: doc.Id, BrandId: doc.BrandId}
	log = log.With("brandId", doc.BrandId)

	if err := p.enterProcessing(runCtx, log, doc); err != nil {
		return res, err
	}

	onStep(jobModel.Chunking)
	chunks, err := p.chunk(doc)
	if err != nil {
		return p.fail(runCtx, log, res, err)
	}
	log.Debug("document chunked", "chunks", len(chunks))

	onStep(jobModel.EmbeddingAPICall)
	vectors, err := p.embed(runCtx, chunks)
	if err != nil {
		return p.fail(runCtx, log, res, err)
	}

	onStep(jobModel.VectorDBCall)
	if err := p.index.EnsureNamespace(runCtx, doc.BrandId); err != nil {
		return p.fail(runCtx, log, res, err)
	}
	if err := p.index.Upsert(runCtx, doc.BrandId, BuildRecords(doc.Id, chunks, vectors)); err != nil {
		return p.fail(runCtx, log, res, err)
	}
	// drop ordinals left over from a longer previous version of this document
	if err := p.index.PruneDocument(runCtx, doc.BrandId, doc.Id, len(chunks)); err != nil {
		return p.fail(runCtx, log, res, fmt.Errorf("prune stale chunks: %w", err))
	}

	res.ChunkCount = len(chunks)
	if err := p.documents.UpdateStatus(runCtx, doc.Id, commonModels.StatusProcessed, commonModels.StatusDetail{ChunkCount: len(chunks)}); err != nil {
		return p.fail(runCtx, log, Result{DocumentId: doc.Id, BrandId: doc.BrandId}, fmt.Errorf("mark processed: %w", err))
	}

	onStep(jobModel.Complete)
	metrics.CaptureIngestionOutcome(string(commonModels.StatusProcessed), len(chunks))
	log.Info("document ingested", "chunks", len(chunks))
	return res, nil
}

// processLocal is implemented by locks that only exclude runs inside this process.
type processLocal interface {
	ProcessLocal() bool
}

// enterProcessing moves the document to processing. A document already in
// processing while we hold the lock belongs to an abandoned run and is reset
// through error first. A process-local lock cannot see runs in other processes,
// so with one the reset waits until the row is older than the lock TTL.
func (p *Pipeline) enterProcessing(ctx context.Context, log *logger_i.Logger, doc commonModels.Document) error {
	if doc.Status == commonModels.StatusProcessing {
		if local, ok := p.lock.(processLocal); ok && local.ProcessLocal() && time.Since(doc.UpdatedAt) < config.DocumentLockTTL {
			log.Info("document processing elsewhere, lock is process-local", "updatedAt", doc.UpdatedAt)
			return commonModels.ErrIngestionInProgress
		}
		log.Warn("document left in processing by an abandoned run, resetting")
		if err := p.documents.UpdateStatus(ctx, doc.Id, commonModels.StatusError,
			commonModels.StatusDetail{Error: "abandoned ingestion run"}); err != nil {
			log.Error("could not reset abandoned document", "error", err)
			return err
		}
	}
	if err := p.documents.UpdateStatus(ctx, doc.Id, commonModels.StatusProcessing, commonModels.StatusDetail{}); err != nil {
		log.Error("could not mark document processing", "error", err)
		return err
	}
	return nil
}

func (p *Pipeline) chunk(doc commonModels.Document) ([]string, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("%w: document %s has no content", commonModels.ErrInvalidInput, doc.Id)
	}
	return chunker.Collect(doc.Content, p.chunking.Size, p.chunking.Overlap)
}

func (p *Pipeline) embed(ctx context.Context, chunks []string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ingest_embedding", time.Since(start)) }()

	vectors, err := p.embedder.BatchEmbedding(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %d vectors for %d chunks", commonModels.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}
	return vectors, nil
}

// fail records the error status best-effort; the original error is always returned.
func (p *Pipeline) fail(ctx context.Context, log *logger_i.Logger, res Result, cause error) (Result, error) {
	cause = commonModels.FromContext(cause)
	log.Error("ingestion failed", "error", cause)

	err := p.documents.UpdateStatus(ctx, res.DocumentId, commonModels.StatusError, commonModels.StatusDetail{Error: cause.Error()})
	if err != nil {
		log.Error("could not record error status", "error", err)
	}
	metrics.CaptureIngestionOutcome(string(commonModels.StatusError), 0)
	res.ChunkCount = 0
	return res, cause
}

// BuildRecords pairs chunk i with vector i under the id documentId-chunk-i.
func BuildRecords(documentId string, chunks []string, vectors [][]float32) []vectorDB.Record {
	records := make([]vectorDB.Record, len(chunks))
	for i, text := range chunks {
		records[i] = vectorDB.Record{
			Id:         commonModels.ChunkId(documentId, i),
			DocumentId: documentId,
			Ordinal:    i,
			Vector:     vectors[i],
			Text:       text,
		}
	}
	return records
}
