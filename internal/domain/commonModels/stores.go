package commonModels

import "context"

// StatusDetail carries the bookkeeping written alongside a status transition.
type StatusDetail struct {
	ChunkCount int
	Error      string
}

// DocumentStore persists documents and their lifecycle status. Implementations
// reject transitions the state machine does not allow.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc Document) (Document, error)
	GetDocument(ctx context.Context, id string) (Document, error)
	UpdateStatus(ctx context.Context, id string, status DocumentStatus, detail StatusDetail) error
	GetByBrand(ctx context.Context, brandId string) ([]Document, error)
}

// BrandStore persists brands, their style profile and memory facts.
type BrandStore interface {
	CreateBrand(ctx context.Context, brand Brand) (Brand, error)
	GetBrand(ctx context.Context, id string) (Brand, error)
	GetProfile(ctx context.Context, brandId string) (StyleProfile, bool, error)
	SaveProfile(ctx context.Context, brandId string, profile StyleProfile) error
	GetMemoryFacts(ctx context.Context, brandId string) ([]MemoryFact, error)
	ReplaceMemoryFacts(ctx context.Context, brandId string, facts []string) error
}
