package job

import (
	"context"
	"testing"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/data/store"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
)

func newService(buffer int) *Service {
	return InitJobService(ServiceConfig{
		JobChannel:        make(chan jobModel.Job, buffer),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
	})
}

func TestSubmit_QueuesAndRecords(t *testing.T) {
	s := newService(1)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-1")

	job, err := s.Submit(ctx, jobModel.JobTypeIngest, jobModel.JobPayload{DocumentId: "doc-1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.Status != jobModel.JobStatusQueued || job.CurrentStep != jobModel.IngestInit || job.TraceId != "trace-1" {
		t.Errorf("unexpected job %+v", job)
	}

	queued := <-s.JobChannel
	if queued.Id != job.Id {
		t.Errorf("queued %s, want %s", queued.Id, job.Id)
	}
	if stored, ok := s.GetJob(ctx, job.Id); !ok || stored.JobPayload.DocumentId != "doc-1" {
		t.Errorf("job not recorded: %+v", stored)
	}
	select {
	case <-s.DispatcherChannel:
	default:
		t.Error("ingest job should signal the dispatcher")
	}
}

func TestSubmit_FullQueueHonoursContext(t *testing.T) {
	s := newService(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Submit(ctx, jobModel.JobTypeRebuildProfile, jobModel.JobPayload{BrandId: "b"}); err == nil {
		t.Fatal("expected error when nothing can receive the job")
	}
}

func TestGetJob_EmptyId(t *testing.T) {
	if _, ok := newService(1).GetJob(context.Background(), ""); ok {
		t.Error("empty id must not be found")
	}
}
