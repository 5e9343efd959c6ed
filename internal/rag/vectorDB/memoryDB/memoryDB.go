// Package memoryDB is an in-process brute-force cosine index. It backs tests and
// single-node runs where Qdrant is not reachable.
package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/rag/vectorDB"
)

type Index struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]vectorDB.Record
}

func NewIndex() *Index {
	return &Index{namespaces: make(map[string]map[string]vectorDB.Record)}
}

func (m *Index) EnsureNamespace(_ context.Context, namespace string) error {
	if err := vectorDB.ValidateNamespace(namespace); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.namespaces[namespace]; !ok {
		m.namespaces[namespace] = make(map[string]vectorDB.Record)
	}
	return nil
}

func (m *Index) Upsert(ctx context.Context, namespace string, records []vectorDB.Record) error {
	if err := vectorDB.ValidateRecords(records); err != nil {
		return err
	}
	if err := m.EnsureNamespace(ctx, namespace); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ns := m.namespaces[namespace]
	for _, r := range records {
		r.Vector = append([]float32(nil), r.Vector...)
		ns[r.Id] = r
	}
	return nil
}

func (m *Index) Query(_ context.Context, namespace string, vector []float32, topK int, includeMetadata bool) ([]vectorDB.Match, error) {
	if err := vectorDB.ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", commonModels.ErrInvalidArgument)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	ns := m.namespaces[namespace]
	matches := make([]vectorDB.Match, 0, len(ns))
	for _, r := range ns {
		if len(r.Vector) != len(vector) {
			return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
				commonModels.ErrInvalidArgument, len(vector), len(r.Vector))
		}
		match := vectorDB.Match{Id: r.Id, Score: cosine(vector, r.Vector)}
		if includeMetadata {
			match.DocumentId = r.DocumentId
			match.Ordinal = r.Ordinal
			match.Text = r.Text
		}
		matches = append(matches, match)
	}

	vectorDB.SortMatches(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *Index) PruneDocument(_ context.Context, namespace, documentId string, fromOrdinal int) error {
	if err := vectorDB.ValidateNamespace(namespace); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.namespaces[namespace] {
		if r.DocumentId == documentId && r.Ordinal >= fromOrdinal {
			delete(m.namespaces[namespace], id)
		}
	}
	return nil
}

// Len reports how many records a namespace holds.
func (m *Index) Len(namespace string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.namespaces[namespace])
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
