package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
)

type storedJob struct {
	job       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore mirrors the Redis job store, including the retention TTL, for
// single-process runs without Redis.
type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]storedJob
	ttl      time.Duration
	now      func() time.Time
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]storedJob),
		ttl:      config.RedisJobStoreTTL,
		now:      time.Now,
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	now := store.now()
	for id, stored := range store.jobMap {
		if now.After(stored.expiresAt) {
			delete(store.jobMap, id)
		}
	}
	store.jobMap[job.Id] = storedJob{job: job, expiresAt: now.Add(store.ttl)}
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	stored, found := store.jobMap[jobId]
	if !found || store.now().After(stored.expiresAt) {
		return jobModel.Job{}, false
	}
	return stored.job, true
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}
