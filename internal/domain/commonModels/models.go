package commonModels

import (
	"strconv"
	"time"
)

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusError      DocumentStatus = "error"
)

// Document is a brand source. Only the ingestion pipeline moves its status.
type Document struct {
	Id         string         `json:"id"`
	BrandId    string         `json:"brand_id"`
	Name       string         `json:"name,omitempty"`
	Content    string         `json:"-"`
	Status     DocumentStatus `json:"status"`
	ChunkCount int            `json:"chunk_count"`
	LastError  string         `json:"last_error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusProcessed, StatusError:
		return true
	}
	return false
}

// CanTransitionTo reports whether the ingestion state machine allows from -> to.
// processed and error are re-enterable through processing when a caller re-triggers ingestion.
func (s DocumentStatus) CanTransitionTo(to DocumentStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusProcessing || to == StatusError
	case StatusProcessing:
		return to == StatusProcessed || to == StatusError
	case StatusProcessed, StatusError:
		return to == StatusProcessing || to == StatusError
	}
	return false
}

type Brand struct {
	Id        string    `json:"id"`
	OwnerId   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ChunkId is a pure function of the owning document and the chunk ordinal.
func ChunkId(documentId string, ordinal int) string {
	return documentId + "-chunk-" + strconv.Itoa(ordinal)
}

type MemoryFact struct {
	Id        string    `json:"id"`
	BrandId   string    `json:"brand_id"`
	Fact      string    `json:"fact"`
	CreatedAt time.Time `json:"created_at"`
}
