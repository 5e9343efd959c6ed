package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestInit       InternalStatus = "IngestInit"
	Chunking         InternalStatus = "Chunking"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	VectorDBCall     InternalStatus = "VectorDB"
	ProfileInit      InternalStatus = "ProfileInit"
	ProfileCall      InternalStatus = "Profile"
	MemoryCall       InternalStatus = "MemoryFacts"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeIngest         JobType = "Ingest"
	JobTypeRebuildProfile JobType = "RebuildProfile"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	DocumentId string `json:"document_id,omitempty"`
	BrandId    string `json:"brand_id,omitempty"`

	ChunkCount  int `json:"chunk_count,omitempty"`
	FactCount   int `json:"fact_count,omitempty"`
	SourceCount int `json:"source_count,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// DocumentLock is the per-document in-flight guard for ingestion.
type DocumentLock interface {
	Acquire(ctx context.Context, documentId string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, documentId string) error
}

// UsageStore counts generated words per user for the current billing month.
type UsageStore interface {
	WordsUsed(ctx context.Context, userId string, month string) (int64, error)
	AddWords(ctx context.Context, userId string, month string, words int64) error
}
