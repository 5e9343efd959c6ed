package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/data/redisStore"
	"github.com/akolanti/BrandVoice/internal/data/store"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redisStore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisStore.NewTestStore(client)
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr, internalStore := newRedis(t)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:      jobID,
		JobType: jobModel.JobTypeIngest,
		Status:  jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			DocumentId: "doc-1",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.JobPayload.DocumentId != testJob.JobPayload.DocumentId {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.DocumentId, testJob.JobPayload.DocumentId)
		}
		if ttl := mr.TTL("job:" + jobID); ttl != config.RedisJobStoreTTL {
			t.Errorf("expected ttl %v, got %v", config.RedisJobStoreTTL, ttl)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)
		if mr.Exists("job:" + jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	_, internalStore := newRedis(t)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("expected job after concurrent saves")
	}
}

func TestInMemoryJobStore(t *testing.T) {
	ctx := context.Background()
	s := store.InitInMemoryJobStore()

	_ = s.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusQueued})
	got, found := s.GetJob(ctx, "a")
	if !found || got.Status != jobModel.JobStatusQueued {
		t.Fatalf("unexpected job %+v found=%v", got, found)
	}
	s.DeleteJob(ctx, "a")
	if _, found := s.GetJob(ctx, "a"); found {
		t.Error("job still present after delete")
	}
}

func TestDocumentLocks(t *testing.T) {
	_, internalStore := newRedis(t)
	locks := map[string]func() jobModel.DocumentLock{
		"redis":    func() jobModel.DocumentLock { return store.NewRedisDocumentLock(internalStore) },
		"inMemory": func() jobModel.DocumentLock { return store.InitInMemoryDocumentLock() },
	}

	for name, newLock := range locks {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			lock := newLock()
			docId := "doc-" + name

			ok, err := lock.Acquire(ctx, docId, time.Minute)
			if err != nil || !ok {
				t.Fatalf("first acquire: ok=%v err=%v", ok, err)
			}
			ok, err = lock.Acquire(ctx, docId, time.Minute)
			if err != nil || ok {
				t.Fatalf("second acquire should be refused: ok=%v err=%v", ok, err)
			}
			if err := lock.Release(ctx, docId); err != nil {
				t.Fatalf("release: %v", err)
			}
			ok, err = lock.Acquire(ctx, docId, time.Minute)
			if err != nil || !ok {
				t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestRedisDocumentLock_ExpiredHolderCannotReleaseNewHolder(t *testing.T) {
	mr, internalStore := newRedis(t)
	ctx := context.Background()
	first := store.NewRedisDocumentLock(internalStore)
	second := store.NewRedisDocumentLock(internalStore)

	if ok, _ := first.Acquire(ctx, "doc", time.Second); !ok {
		t.Fatal("first acquire failed")
	}
	mr.FastForward(2 * time.Second)
	if ok, _ := second.Acquire(ctx, "doc", time.Minute); !ok {
		t.Fatal("acquire after expiry failed")
	}

	if err := first.Release(ctx, "doc"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if !mr.Exists("ingest-lock:doc") {
		t.Error("stale holder removed the current lock")
	}
}

func TestUsageStores(t *testing.T) {
	mr, internalStore := newRedis(t)
	stores := map[string]jobModel.UsageStore{
		"redis":    store.NewRedisUsageStore(internalStore),
		"inMemory": store.InitInMemoryUsageStore(),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			used, err := s.WordsUsed(ctx, "user-1", "2026-10")
			if err != nil || used != 0 {
				t.Fatalf("fresh counter: used=%d err=%v", used, err)
			}
			_ = s.AddWords(ctx, "user-1", "2026-10", 120)
			_ = s.AddWords(ctx, "user-1", "2026-10", 30)
			_ = s.AddWords(ctx, "user-1", "2026-11", 5)

			used, err = s.WordsUsed(ctx, "user-1", "2026-10")
			if err != nil || used != 150 {
				t.Errorf("expected 150 words, got %d (err %v)", used, err)
			}
		})
	}

	if ttl := mr.TTL("usage:user-1:2026-10"); ttl != config.RedisUsageStoreTTL {
		t.Errorf("expected usage ttl %v, got %v", config.RedisUsageStoreTTL, ttl)
	}
}
