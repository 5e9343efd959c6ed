package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/data/redisStore"
)

func usageKey(userId, month string) string {
	return "usage:" + userId + ":" + month
}

type RedisUsageStore struct {
	store *redisStore.Store
}

func NewRedisUsageStore(store *redisStore.Store) *RedisUsageStore {
	return &RedisUsageStore{store: store}
}

func (s *RedisUsageStore) WordsUsed(ctx context.Context, userId string, month string) (int64, error) {
	val, err := s.store.Get(ctx, usageKey(userId, month))
	if s.store.IsNil(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (s *RedisUsageStore) AddWords(ctx context.Context, userId string, month string, words int64) error {
	_, err := s.store.IncrBy(ctx, usageKey(userId, month), words, config.RedisUsageStoreTTL)
	return err
}

type InMemoryUsageStore struct {
	mu    sync.Mutex
	words map[string]int64
}

func InitInMemoryUsageStore() *InMemoryUsageStore {
	return &InMemoryUsageStore{words: make(map[string]int64)}
}

func (s *InMemoryUsageStore) WordsUsed(ctx context.Context, userId string, month string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words[usageKey(userId, month)], nil
}

func (s *InMemoryUsageStore) AddWords(ctx context.Context, userId string, month string, words int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words[usageKey(userId, month)] += words
	return nil
}
