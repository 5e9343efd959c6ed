package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/internal/rag/vectorDB"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// payload keys
const (
	fieldNamespace  = "namespace"
	fieldChunkId    = "chunk_id"
	fieldDocumentId = "document_id"
	fieldChunkOrder = "chunk_order"
	fieldText       = "text"
	fieldIngestedAt = "ingested_at"
)

// pointNamespace seeds the name-based point ids; changing it orphans every stored point.
var pointNamespace = uuid.MustParse("6f1c3a52-8d4e-4b7a-9a35-2f0d1e7c9b41")

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once

// ClientHolder stores every brand in one collection; the namespace is an indexed
// keyword payload that every read, write and delete filters on.
type ClientHolder struct {
	QObj       *qdrant.Client
	collection string
	dimension  uint64
}

// GetQuadrantClient connects once and prepares the collection. It returns nil when
// Qdrant is unreachable so callers can fall back.
func GetQuadrantClient(ctx context.Context, settings config.QdrantSettings, dimension int) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx, settings, uint64(dimension))
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj:       quadrantInstance,
		collection: settings.Collection,
		dimension:  uint64(dimension),
	}
}

func newClient(ctx context.Context, settings config.QdrantSettings, dimension uint64) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.Host,
		Port:     settings.Port,
		APIKey:   settings.APIKey,
		UseTLS:   settings.UseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate", "error", err)
		return nil
	}

	setupCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if err := createCollection(setupCtx, client, settings.Collection, dimension); err != nil {
		logger.Error("could not create collection", "collectionName", settings.Collection, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) EnsureNamespace(ctx context.Context, namespace string) error {
	if err := vectorDB.ValidateNamespace(namespace); err != nil {
		return err
	}
	return classifyError(createCollection(ctx, db.QObj, db.collection, db.dimension))
}

func (db *ClientHolder) Upsert(ctx context.Context, namespace string, records []vectorDB.Record) error {
	if err := vectorDB.ValidateNamespace(namespace); err != nil {
		return err
	}
	if err := vectorDB.ValidateRecords(records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start)) }()

	ingestedAt := time.Now().Unix()
	qdrantPoints := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointId(namespace, r.Id)),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				fieldNamespace:  namespace,
				fieldChunkId:    r.Id,
				fieldDocumentId: r.DocumentId,
				fieldChunkOrder: int64(r.Ordinal),
				fieldText:       r.Text,
				fieldIngestedAt: ingestedAt,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", classifyError(err))
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, namespace string, vector []float32, topK int, includeMetadata bool) ([]vectorDB.Match, error) {
	if err := vectorDB.ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", commonModels.ErrInvalidArgument)
	}
	loggr := logger.WithTrace(ctx).With("namespace", namespace)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_query", time.Since(start)) }()

	// chunk_id is needed even without metadata, it is the match identity
	payload := qdrant.NewWithPayloadInclude(fieldChunkId)
	if includeMetadata {
		payload = qdrant.NewWithPayload(true)
	}
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         namespaceFilter(namespace),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    payload,
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, classifyError(err)
	}

	matches := make([]vectorDB.Match, 0, len(result))
	for _, hit := range result {
		m := vectorDB.Match{
			Id:    hit.Payload[fieldChunkId].GetStringValue(),
			Score: hit.Score,
		}
		if includeMetadata {
			m.DocumentId = hit.Payload[fieldDocumentId].GetStringValue()
			m.Ordinal = int(hit.Payload[fieldChunkOrder].GetIntegerValue())
			m.Text = hit.Payload[fieldText].GetStringValue()
		}
		matches = append(matches, m)
	}
	vectorDB.SortMatches(matches)

	loggr.Debug("Found matches", "count", len(matches))
	return matches, nil
}

func (db *ClientHolder) PruneDocument(ctx context.Context, namespace, documentId string, fromOrdinal int) error {
	if err := vectorDB.ValidateNamespace(namespace); err != nil {
		return err
	}
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(pruneFilter(namespace, documentId, fromOrdinal)),
	})
	if err != nil {
		return fmt.Errorf("qdrant prune failed: %w", classifyError(err))
	}
	return nil
}

// PointId maps a chunk id to the UUID Qdrant requires. It is deterministic per
// namespace, so re-upserting a chunk overwrites its previous point.
func PointId(namespace, chunkId string) string {
	return uuid.NewSHA1(pointNamespace, []byte(namespace+"/"+chunkId)).String()
}

func namespaceFilter(namespace string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(fieldNamespace, namespace)},
	}
}

func pruneFilter(namespace, documentId string, fromOrdinal int) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(fieldNamespace, namespace),
			qdrant.NewMatch(fieldDocumentId, documentId),
			qdrant.NewRange(fieldChunkOrder, &qdrant.Range{Gte: qdrant.PtrOf(float64(fromOrdinal))}),
		},
	}
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	for _, field := range []string{fieldNamespace, fieldDocumentId} {
		_, err = client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: collectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("create %s index: %w", field, err)
		}
	}
	return nil
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return commonModels.FromContext(err)
	}
	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", commonModels.ErrTimeout, err)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %w", commonModels.ErrInvalidArgument, err)
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %w", commonModels.ErrRateLimited, err)
	default:
		return fmt.Errorf("%w: %w", commonModels.ErrIndexUnavailable, err)
	}
}
