package vectorDB

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
)

// Record is one chunk as written to the index.
type Record struct {
	Id         string
	DocumentId string
	Ordinal    int
	Vector     []float32
	Text       string
}

// Match is one query hit. DocumentId and Text are empty unless metadata was requested.
type Match struct {
	Id         string
	Score      float32
	DocumentId string
	Ordinal    int
	Text       string
}

// VectorIndex is a nearest-neighbour store partitioned by namespace. Every call is
// scoped to exactly one namespace; the index never reads across namespaces.
type VectorIndex interface {
	EnsureNamespace(ctx context.Context, namespace string) error
	// Upsert replaces any record with the same id in the namespace.
	Upsert(ctx context.Context, namespace string, records []Record) error
	// Query returns at most topK matches sorted by non-increasing score, ties by id.
	// An empty namespace yields no matches and no error.
	Query(ctx context.Context, namespace string, vector []float32, topK int, includeMetadata bool) ([]Match, error)
	// PruneDocument deletes the document's records with Ordinal >= fromOrdinal.
	PruneDocument(ctx context.Context, namespace, documentId string, fromOrdinal int) error
}

func ValidateNamespace(namespace string) error {
	if strings.TrimSpace(namespace) == "" {
		return fmt.Errorf("%w: empty namespace", commonModels.ErrInvalidArgument)
	}
	return nil
}

func ValidateRecords(records []Record) error {
	for _, r := range records {
		if r.Id == "" || len(r.Vector) == 0 {
			return fmt.Errorf("%w: record %q has no id or vector", commonModels.ErrInvalidArgument, r.Id)
		}
	}
	return nil
}

func SortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Id < matches[j].Id
	})
}
