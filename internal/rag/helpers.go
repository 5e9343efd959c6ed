package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

func complete(job jobModel.Job) jobModel.Job {
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("job step", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string) jobModel.Job {
	s.logger.Error(message, "jobId", job.Id, "error", err)

	job.Error = jobModel.JobError{
		Code:    commonModels.StatusCode(err),
		Message: commonModels.PublicMessage(err),
		Retry:   commonModels.IsRetryable(err),
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

// loadSources returns the content of every document of the brand, oldest first.
func (s *service) loadSources(ctx context.Context, brandId string) ([]string, error) {
	if strings.TrimSpace(brandId) == "" {
		return nil, fmt.Errorf("%w: empty brand id", commonModels.ErrInvalidArgument)
	}
	if _, err := s.brands.GetBrand(ctx, brandId); err != nil {
		return nil, err
	}
	docs, err := s.documents.GetByBrand(ctx, brandId)
	if err != nil {
		return nil, err
	}
	sources := make([]string, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.Content) != "" {
			sources = append(sources, d.Content)
		}
	}
	return sources, nil
}
