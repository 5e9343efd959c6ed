package rag_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/data/relational"
	"github.com/akolanti/BrandVoice/internal/data/store"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/rag"
	"github.com/akolanti/BrandVoice/internal/rag/generation"
	"github.com/akolanti/BrandVoice/internal/rag/ingest"
	"github.com/akolanti/BrandVoice/internal/rag/llm"
	"github.com/akolanti/BrandVoice/internal/rag/profile"
	"github.com/akolanti/BrandVoice/internal/rag/prompt"
	"github.com/akolanti/BrandVoice/internal/rag/vectorDB/memoryDB"
)

type fixture struct {
	service rag.Service
	db      *relational.Store
	index   *memoryDB.Index
	brand   commonModels.Brand
}

func newFixture(t *testing.T, e *MockEmbedder, l *MockLLM) fixture {
	t.Helper()
	db, err := relational.Open(filepath.Join(t.TempDir(), "rag.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	s := relational.NewStore(db)
	index := memoryDB.NewIndex()
	brand, err := s.CreateBrand(context.Background(), commonModels.Brand{OwnerId: "user-1", Name: "Acme"})
	if err != nil {
		t.Fatalf("create brand: %v", err)
	}

	svc := rag.NewService(rag.Deps{
		Documents: s,
		Brands:    s,
		Pipeline:  ingest.NewPipeline(s, e, index, store.InitInMemoryDocumentLock(), config.ChunkingSettings{Size: 1000, Overlap: 200}),
		Profiles:  profile.NewBuilder(l),
		Assembler: prompt.NewAssembler(e, index, s, config.RetrievalSettings{TopK: 5, MaxContextChars: 6000, OnFailure: config.OnFailureFail}),
		Invoker:   generation.NewInvoker(l),
	})
	return fixture{service: svc, db: s, index: index, brand: brand}
}

func (f fixture) addDocument(t *testing.T, content string) commonModels.Document {
	t.Helper()
	doc, err := f.db.CreateDocument(context.Background(), commonModels.Document{BrandId: f.brand.Id, Content: content})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func TestIngestDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder)
		missingDoc     bool
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedChunks int
		expectedCode   int
		expectedRetry  bool
	}{
		{
			name:           "Success_Full_Flow",
			setupMocks:     func(e *MockEmbedder) {},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusComplete,
			expectedChunks: 1,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder) {
				e.OnBatchEmbedding = func(ctx context.Context, texts []string) ([][]float32, error) {
					return nil, fmt.Errorf("%w: quota", commonModels.ErrEmbeddingUnavailable)
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusServiceUnavailable,
			expectedRetry:  true,
		},
		{
			name:           "Failure_Document_Missing",
			setupMocks:     func(e *MockEmbedder) {},
			missingDoc:     true,
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &MockEmbedder{}
			tt.setupMocks(e)
			f := newFixture(t, e, &MockLLM{})

			docId := "ghost"
			if !tt.missingDoc {
				docId = f.addDocument(t, "Acme builds reusable rockets for small satellites.").Id
			}

			job := f.service.IngestDocument(context.Background(), jobModel.Job{
				Id:         "job-1",
				JobType:    jobModel.JobTypeIngest,
				JobPayload: jobModel.JobPayload{DocumentId: docId},
			})

			if job.CurrentStep != tt.expectedStep {
				t.Errorf("expected step %s, got %s", tt.expectedStep, job.CurrentStep)
			}
			if job.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, job.Status)
			}
			if job.JobPayload.ChunkCount != tt.expectedChunks {
				t.Errorf("expected %d chunks, got %d", tt.expectedChunks, job.JobPayload.ChunkCount)
			}
			if job.Error.Code != tt.expectedCode {
				t.Errorf("expected error code %d, got %d", tt.expectedCode, job.Error.Code)
			}
			if job.Error.Retry != tt.expectedRetry {
				t.Errorf("expected retry %v, got %v", tt.expectedRetry, job.Error.Retry)
			}
			if tt.expectedStatus == jobModel.JobStatusComplete && f.index.Len(f.brand.Id) != tt.expectedChunks {
				t.Errorf("expected %d vectors in brand namespace, got %d", tt.expectedChunks, f.index.Len(f.brand.Id))
			}
		})
	}
}

func TestRebuildProfile(t *testing.T) {
	calls := 0
	l := &MockLLM{OnGenerate: func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		if calls == 1 {
			return `{"voice":{"tone":["playful","direct"]},"content":{"themes":["rockets"],"brandRules":{"do":["Use short sentences"],"dont":[]}}}`, nil
		}
		return `{"facts":["Acme was founded in 2009","Acme was founded in 2009","Acme launches from Norway"]}`, nil
	}}
	f := newFixture(t, &MockEmbedder{}, l)
	f.addDocument(t, "Acme was founded in 2009 and launches small satellites from Norway every month.")

	job := f.service.RebuildProfile(context.Background(), jobModel.Job{
		Id:         "job-profile",
		JobType:    jobModel.JobTypeRebuildProfile,
		JobPayload: jobModel.JobPayload{BrandId: f.brand.Id},
	})

	if job.Status != jobModel.JobStatusComplete {
		t.Fatalf("expected complete job, got %s (%+v)", job.Status, job.Error)
	}
	if job.JobPayload.SourceCount != 1 || job.JobPayload.FactCount != 2 {
		t.Errorf("unexpected counts: %+v", job.JobPayload)
	}

	p, ok, err := f.db.GetProfile(context.Background(), f.brand.Id)
	if err != nil || !ok {
		t.Fatalf("profile not saved: ok=%v err=%v", ok, err)
	}
	if p.Voice.Tone[0] != "playful" {
		t.Errorf("unexpected tone %v", p.Voice.Tone)
	}
	facts, _ := f.db.GetMemoryFacts(context.Background(), f.brand.Id)
	if len(facts) != 2 {
		t.Errorf("expected 2 facts, got %d", len(facts))
	}
}

func TestRebuildProfile_Failures(t *testing.T) {
	tests := []struct {
		name         string
		brandId      func(f fixture) string
		llmErr       error
		expectedCode int
	}{
		{
			name:         "Unknown_Brand",
			brandId:      func(f fixture) string { return "ghost" },
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "LLM_Down",
			brandId:      func(f fixture) string { return f.brand.Id },
			llmErr:       commonModels.ErrModelUnavailable,
			expectedCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &MockLLM{OnGenerate: func(ctx context.Context, req llm.Request) (string, error) {
				return "", tt.llmErr
			}}
			f := newFixture(t, &MockEmbedder{}, l)
			f.addDocument(t, strings.Repeat("Acme makes rockets. ", 10))

			job := f.service.RebuildProfile(context.Background(), jobModel.Job{
				Id:         "job-profile",
				JobPayload: jobModel.JobPayload{BrandId: tt.brandId(f)},
			})
			if job.Status != jobModel.JobStatusError {
				t.Fatalf("expected error status, got %s", job.Status)
			}
			if job.Error.Code != tt.expectedCode {
				t.Errorf("expected code %d, got %d", tt.expectedCode, job.Error.Code)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	var seen llm.Request
	l := &MockLLM{OnGenerate: func(ctx context.Context, req llm.Request) (string, error) {
		seen = req
		return "Small rockets, big dreams.", nil
	}}
	f := newFixture(t, &MockEmbedder{}, l)
	doc := f.addDocument(t, "Acme builds reusable rockets for small satellites.")
	if job := f.service.IngestDocument(context.Background(), jobModel.Job{JobPayload: jobModel.JobPayload{DocumentId: doc.Id}}); job.Status != jobModel.JobStatusComplete {
		t.Fatalf("ingestion failed: %+v", job.Error)
	}

	res, err := f.service.Generate(context.Background(), rag.GenerateRequest{BrandId: f.brand.Id, Prompt: "Write a tagline", Words: 20})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Output.Text != "Small rockets, big dreams." {
		t.Errorf("unexpected text %q", res.Output.Text)
	}
	if len(res.Prompt.Sources) != 1 || res.Prompt.Sources[0] != commonModels.ChunkId(doc.Id, 0) {
		t.Errorf("unexpected sources %v", res.Prompt.Sources)
	}
	if seen.MaxTokens != generation.MaxTokensFor(20) || seen.Temperature != config.ModelTemperature {
		t.Errorf("unexpected request options %+v", seen)
	}
	if !strings.Contains(seen.UserPrompt, "reusable rockets") {
		t.Error("retrieved context missing from user prompt")
	}
}

func TestGenerate_Stream(t *testing.T) {
	f := newFixture(t, &MockEmbedder{}, &MockLLM{})

	res, err := f.service.Generate(context.Background(), rag.GenerateRequest{BrandId: f.brand.Id, Prompt: "Hello", Stream: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	text, err := generation.Drain(res.Output.Fragments)
	if err != nil || text != "generated text" {
		t.Errorf("unexpected stream result %q, %v", text, err)
	}
}

func TestGenerate_ContentPolicy(t *testing.T) {
	l := &MockLLM{OnGenerate: func(ctx context.Context, req llm.Request) (string, error) {
		return "", commonModels.ErrContentPolicyViolation
	}}
	f := newFixture(t, &MockEmbedder{}, l)

	_, err := f.service.Generate(context.Background(), rag.GenerateRequest{BrandId: f.brand.Id, Prompt: "Hello"})
	if !errors.Is(err, commonModels.ErrContentPolicyViolation) {
		t.Errorf("expected content policy violation, got %v", err)
	}
}
