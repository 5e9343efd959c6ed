package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	jobmodel "github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()
	log := logger.WithTrace(ctx).With("jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job")

	job = saveJobState(ctx, job, jobmodel.JobStatusRunning)

	switch job.JobType {
	case jobmodel.JobTypeIngest:
		job = _runner.IngestDocument(ctx, job)
	case jobmodel.JobTypeRebuildProfile:
		job = _runner.RebuildProfile(ctx, job)
	default:
		log.Error("unknown job type")
		job.Error = jobmodel.JobError{Code: 400, Message: commonModels.ErrInvalidArgument.Error()}
		job.Status = jobmodel.JobStatusError
		job.CurrentStep = jobmodel.Error
	}

	job.EndTime = time.Now()
	status := jobmodel.JobStatusComplete
	if job.Status == jobmodel.JobStatusError {
		status = jobmodel.JobStatusError
	}
	// the job context may be spent by now; the final state must still land
	saveJobState(context.WithoutCancel(ctx), job, status)
	log.Info("Job finished", "status", status, "step", job.CurrentStep)
}

func removeWorker(reason string) {
	count := atomic.AddInt64(&currentWorkerCount, -1)
	metrics.DecrementActiveWorkerCount()
	logger.Info("Removed worker", "reason", reason, "workerCount", count)
	workerWaitGroup.Done()
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) jobmodel.Job {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status", "jobId", job.Id, "error", err)
	}
	return job
}
