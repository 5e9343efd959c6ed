package adapter

import (
	"fmt"

	"github.com/akolanti/BrandVoice/internal/api"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("jobs/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
	}
	switch job.JobType {
	case jobModel.JobTypeIngest:
		result.Ingest = &api.IngestResult{
			DocumentId: job.JobPayload.DocumentId,
			BrandId:    job.JobPayload.BrandId,
			ChunkCount: job.JobPayload.ChunkCount,
		}
	case jobModel.JobTypeRebuildProfile:
		result.Profile = &api.ProfileResult{
			BrandId:     job.JobPayload.BrandId,
			SourceCount: job.JobPayload.SourceCount,
			FactCount:   job.JobPayload.FactCount,
		}
	}

	return api.JobResponse{
		Id:        job.Id,
		JobType:   string(job.JobType),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToBrandResponse(b commonModels.Brand) api.BrandResponse {
	return api.BrandResponse{Id: b.Id, Name: b.Name, OwnerId: b.OwnerId, CreatedAt: b.CreatedAt}
}

func ToDocumentResponse(d commonModels.Document, jobId string) api.DocumentResponse {
	return api.DocumentResponse{
		Id:         d.Id,
		BrandId:    d.BrandId,
		Name:       d.Name,
		Status:     string(d.Status),
		ChunkCount: d.ChunkCount,
		LastError:  d.LastError,
		JobId:      jobId,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func ToProfileResponse(brandId string, p commonModels.StyleProfile, found bool, facts []commonModels.MemoryFact) api.ProfileResponse {
	res := api.ProfileResponse{BrandId: brandId, Profile: p, Facts: make([]string, 0, len(facts))}
	if !found || p.IsEmpty() {
		res.Profile = commonModels.NeutralProfile()
		res.IsDefault = true
	}
	for _, f := range facts {
		res.Facts = append(res.Facts, f.Fact)
	}
	return res
}

// ToErrorResponse reports err by its taxonomy class; unknown errors stay opaque.
func ToErrorResponse(id string, err error) api.ErrorResponse {
	return api.ErrorResponse{
		Id: id,
		Error: &api.JobOutgoingError{
			Code:    commonModels.StatusCode(err),
			Message: commonModels.PublicMessage(err),
			Retry:   commonModels.IsRetryable(err),
		},
	}
}

func BadRequest(id string, error string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Id: id,
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
