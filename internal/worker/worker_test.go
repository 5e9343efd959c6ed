package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/job"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

// MockRunner tracks which jobs were executed
type MockRunner struct {
	Ingested int32
	Rebuilt  int32
}

func (m *MockRunner) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.Ingested, 1)
	j.CurrentStep = jobModel.Complete
	return j
}

func (m *MockRunner) RebuildProfile(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.Rebuilt, 1)
	j.Status = jobModel.JobStatusError
	j.CurrentStep = jobModel.Error
	return j
}

type MockJobStore struct {
	mu   sync.Mutex
	jobs map[string]jobModel.Job
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobId]
	return j, ok
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs == nil {
		m.jobs = make(map[string]jobModel.Job)
	}
	m.jobs[j.Id] = j
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerPool_Flow(t *testing.T) {
	jobStore := &MockJobStore{}
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          jobStore,
	}
	mockRunner := &MockRunner{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	atomic.StoreInt64(&currentWorkerCount, 0)
	InitServices(jobSvc, mockRunner)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) >= 2 })
	})

	t.Run("Worker runs jobs by type", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "ingest-1", JobType: jobModel.JobTypeIngest}
		jobSvc.JobChannel <- jobModel.Job{Id: "profile-1", JobType: jobModel.JobTypeRebuildProfile}

		waitFor(t, func() bool {
			a, okA := jobStore.GetJob(context.Background(), "ingest-1")
			b, okB := jobStore.GetJob(context.Background(), "profile-1")
			return okA && okB && a.Status == jobModel.JobStatusComplete && b.Status == jobModel.JobStatusError
		})
		if atomic.LoadInt32(&mockRunner.Ingested) != 1 || atomic.LoadInt32(&mockRunner.Rebuilt) != 1 {
			t.Errorf("unexpected runs: ingested=%d rebuilt=%d", mockRunner.Ingested, mockRunner.Rebuilt)
		}
	})

	t.Run("Unknown job type is recorded as error", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "odd-1", JobType: "Mystery"}
		waitFor(t, func() bool {
			j, ok := jobStore.GetJob(context.Background(), "odd-1")
			return ok && j.Status == jobModel.JobStatusError && j.Error.Code == 400
		})
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	previousMin := atomic.SwapInt64(&minWorkerCount, 0)
	previousTimeout := idleWorkerTimeout
	idleWorkerTimeout = 20 * time.Millisecond
	t.Cleanup(func() {
		idleWorkerTimeout = previousTimeout
		atomic.StoreInt64(&minWorkerCount, previousMin)
	})

	logger = logger_i.NewLogger("test_worker_pool")
	InitServices(&job.Service{JobChannel: make(chan jobModel.Job)}, &MockRunner{})
	wg := &sync.WaitGroup{}
	workerWaitGroup = wg
	stopWorkerChannel = make(chan bool)

	createWorker()
	waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) == 0 })
	wg.Wait()
}
