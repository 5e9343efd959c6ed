package api

import (
	"time"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"2b1f9c0e-5d3a-4f7e-9a51-1c2d3e4f5a6b"`
	JobType   string            `json:"job_type" example:"Ingest"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"document not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status      string         `json:"status" example:"COMPLETE"`
	CurrentStep string         `json:"current_step,omitempty" example:"Complete"`
	Ingest      *IngestResult  `json:"ingest,omitempty"`
	Profile     *ProfileResult `json:"profile,omitempty"`
}

type IngestResult struct {
	DocumentId string `json:"document_id"`
	BrandId    string `json:"brand_id,omitempty"`
	ChunkCount int    `json:"chunk_count"`
}

type ProfileResult struct {
	BrandId     string `json:"brand_id"`
	SourceCount int    `json:"source_count"`
	FactCount   int    `json:"fact_count"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type ErrorResponse struct {
	Id    string            `json:"id,omitempty"`
	Error *JobOutgoingError `json:"error"`
}

type BrandResponse struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerId   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type DocumentResponse struct {
	Id         string    `json:"id"`
	BrandId    string    `json:"brand_id"`
	Name       string    `json:"name,omitempty"`
	Status     string    `json:"status" example:"pending"`
	ChunkCount int       `json:"chunk_count"`
	LastError  string    `json:"last_error,omitempty"`
	JobId      string    `json:"job_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ProfileResponse struct {
	BrandId   string                    `json:"brand_id"`
	Profile   commonModels.StyleProfile `json:"profile"`
	Facts     []string                  `json:"facts"`
	IsDefault bool                      `json:"is_default"`
}

type GenerateResponse struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}

// StreamFragment is the payload of each SSE "message" event.
type StreamFragment struct {
	Text string `json:"text"`
}

type StreamDone struct {
	Sources []string `json:"sources"`
}

// requests---------------------

type CreateBrandRequest struct {
	Name string `json:"name" validate:"required" example:"Acme Rockets"`
}

type CreateDocumentRequest struct {
	Name    string `json:"name,omitempty" example:"About us"`
	Content string `json:"content" validate:"required"`
}

type GenerateRequest struct {
	Prompt    string `json:"prompt" validate:"required" example:"Write a launch announcement"`
	WordCount int    `json:"word_count,omitempty" example:"150"`
	Stream    bool   `json:"stream,omitempty"`
}

// WebhookRequest is the database-change notification for a new document row.
type WebhookRequest struct {
	Record struct {
		Id string `json:"id"`
	} `json:"record"`
}
