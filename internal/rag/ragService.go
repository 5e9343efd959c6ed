package rag

import (
	"context"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/internal/rag/generation"
	"github.com/akolanti/BrandVoice/internal/rag/ingest"
	"github.com/akolanti/BrandVoice/internal/rag/profile"
	"github.com/akolanti/BrandVoice/internal/rag/prompt"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

/*
Service is the only entry point workers, handlers and the CLI use. The private
service struct holds the pipeline pieces; tests build it from fakes through NewService.
*/
type Service interface {
	// IngestDocument runs the ingestion pipeline for job.JobPayload.DocumentId.
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	// RebuildProfile rebuilds the style profile and memory facts of job.JobPayload.BrandId.
	RebuildProfile(ctx context.Context, job jobModel.Job) jobModel.Job
	Assemble(ctx context.Context, brandId, userPrompt string, words int) (prompt.Prompt, error)
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

type GenerateRequest struct {
	BrandId string
	Prompt  string
	Words   int
	Stream  bool
}

type GenerateResult struct {
	Output *generation.Output
	Prompt prompt.Prompt
}

type service struct {
	documents commonModels.DocumentStore
	brands    commonModels.BrandStore
	pipeline  *ingest.Pipeline
	profiles  *profile.Builder
	assembler *prompt.Assembler
	invoker   *generation.Invoker
	logger    *logger_i.Logger
}

type Deps struct {
	Documents commonModels.DocumentStore
	Brands    commonModels.BrandStore
	Pipeline  *ingest.Pipeline
	Profiles  *profile.Builder
	Assembler *prompt.Assembler
	Invoker   *generation.Invoker
}

func NewService(d Deps) Service {
	return &service{
		documents: d.Documents,
		brands:    d.Brands,
		pipeline:  d.Pipeline,
		profiles:  d.Profiles,
		assembler: d.Assembler,
		invoker:   d.Invoker,
		logger:    logger_i.NewLogger("rag_service"),
	}
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.WithTrace(ctx).With("jobId", job.Id, "documentId", job.JobPayload.DocumentId)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	res, err := s.pipeline.Run(ctx, job.JobPayload.DocumentId, func(step jobModel.InternalStatus) {
		job = logOutput(job, step, log)
	})
	job.JobPayload.BrandId = res.BrandId
	if err != nil {
		return s.jobError(job, err, "INGESTION_FAILURE")
	}
	job.JobPayload.ChunkCount = res.ChunkCount
	return complete(job)
}

func (s *service) RebuildProfile(ctx context.Context, job jobModel.Job) jobModel.Job {
	brandId := job.JobPayload.BrandId
	log := s.logger.WithTrace(ctx).With("jobId", job.Id, "brandId", brandId)
	ctx, cancel := context.WithTimeout(ctx, config.JobExecutionTimeout)
	defer cancel()

	job = logOutput(job, jobModel.ProfileInit, log)
	sources, err := s.loadSources(ctx, brandId)
	if err != nil {
		return s.jobError(job, err, "PROFILE_SOURCES_FAILURE")
	}
	job.JobPayload.SourceCount = len(sources)

	job = logOutput(job, jobModel.ProfileCall, log)
	p, err := s.profiles.BuildProfile(ctx, sources)
	if err != nil {
		return s.jobError(job, err, "PROFILE_GENERATION_FAILURE")
	}
	if err := s.brands.SaveProfile(ctx, brandId, p); err != nil {
		return s.jobError(job, err, "PROFILE_SAVE_FAILURE")
	}

	job = logOutput(job, jobModel.MemoryCall, log)
	facts, err := s.profiles.ExtractMemoryFacts(ctx, p, sources)
	if err != nil {
		// the profile is already saved; previous facts stay in place
		return s.jobError(job, err, "MEMORY_FACT_FAILURE")
	}
	if err := s.brands.ReplaceMemoryFacts(ctx, brandId, facts); err != nil {
		return s.jobError(job, err, "MEMORY_FACT_SAVE_FAILURE")
	}
	job.JobPayload.FactCount = len(facts)
	return complete(job)
}

func (s *service) Assemble(ctx context.Context, brandId, userPrompt string, words int) (prompt.Prompt, error) {
	return s.assembler.Assemble(ctx, brandId, userPrompt, words)
}

func (s *service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	words := req.Words
	if words <= 0 {
		words = config.DefaultWordCount
	}

	p, err := s.assembler.Assemble(ctx, req.BrandId, req.Prompt, words)
	if err != nil {
		return GenerateResult{}, err
	}

	out, err := s.invoker.Generate(ctx, p.SystemPrompt, p.UserPrompt, generation.Options{
		Temperature: config.ModelTemperature,
		MaxTokens:   generation.MaxTokensFor(words),
		Stream:      req.Stream,
	})
	if err != nil {
		return GenerateResult{Prompt: p}, err
	}
	return GenerateResult{Output: out, Prompt: p}, nil
}
