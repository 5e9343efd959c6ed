package job

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/google/uuid"
)

var ErrQueueClosed = errors.New("job queue is not accepting work")

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		logger:            logger_i.NewLogger("job_service"),
	}
}

// Submit records a QUEUED job and hands it to the worker pool. The send blocks
// while the buffer is full so bursts push back on callers instead of piling up.
func (s *Service) Submit(ctx context.Context, jobType jobModel.JobType, payload jobModel.JobPayload) (jobModel.Job, error) {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	job := jobModel.Job{
		Id:          uuid.NewString(),
		TraceId:     trace,
		JobType:     jobType,
		JobPayload:  payload,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
	}
	switch jobType {
	case jobModel.JobTypeIngest:
		job.CurrentStep = jobModel.IngestInit
	case jobModel.JobTypeRebuildProfile:
		job.CurrentStep = jobModel.ProfileInit
	}
	log := s.logger.WithTrace(ctx).With("jobId", job.Id, "jobType", jobType)

	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("could not record queued job", "error", err)
		return jobModel.Job{}, err
	}

	select {
	case s.JobChannel <- job:
	case <-ctx.Done():
		return jobModel.Job{}, errors.Join(ErrQueueClosed, ctx.Err())
	}
	metrics.IncrementJobsInQueue()
	log.Info("Created new job")

	// ingestion is long-running external work, so it always asks for a worker;
	// idle workers retire on their own
	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount == 0 || jobType == jobModel.JobTypeIngest {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
