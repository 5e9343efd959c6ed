package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/BrandVoice/internal/data/redisStore"
	"github.com/google/uuid"
)

const lockKeyPrefix = "ingest-lock:"

// RedisDocumentLock guards ingestion across processes. Each acquisition stores a
// fresh token so an expired holder cannot release a newer holder's lock.
type RedisDocumentLock struct {
	store  *redisStore.Store
	mu     sync.Mutex
	tokens map[string]string
}

func NewRedisDocumentLock(store *redisStore.Store) *RedisDocumentLock {
	return &RedisDocumentLock{store: store, tokens: make(map[string]string)}
}

func (l *RedisDocumentLock) Acquire(ctx context.Context, documentId string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, lockKeyPrefix+documentId, token, ttl)
	if err != nil || !ok {
		return false, err
	}
	l.mu.Lock()
	l.tokens[documentId] = token
	l.mu.Unlock()
	return true, nil
}

func (l *RedisDocumentLock) Release(ctx context.Context, documentId string) error {
	l.mu.Lock()
	token, ok := l.tokens[documentId]
	delete(l.tokens, documentId)
	l.mu.Unlock()
	if !ok {
		return nil
	}
	_, err := l.store.CompareAndDelete(ctx, lockKeyPrefix+documentId, token)
	return err
}

type InMemoryDocumentLock struct {
	mu      sync.Mutex
	holders map[string]time.Time
	now     func() time.Time
}

func InitInMemoryDocumentLock() *InMemoryDocumentLock {
	return &InMemoryDocumentLock{holders: make(map[string]time.Time), now: time.Now}
}

func (l *InMemoryDocumentLock) Acquire(ctx context.Context, documentId string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if expiry, held := l.holders[documentId]; held && l.now().Before(expiry) {
		return false, nil
	}
	l.holders[documentId] = l.now().Add(ttl)
	return true, nil
}

// ProcessLocal reports that this lock does not exclude runs in other processes.
func (l *InMemoryDocumentLock) ProcessLocal() bool { return true }

func (l *InMemoryDocumentLock) Release(ctx context.Context, documentId string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.holders, documentId)
	return nil
}
