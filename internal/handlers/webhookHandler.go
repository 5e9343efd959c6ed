package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/BrandVoice/internal/adapter"
	"github.com/akolanti/BrandVoice/internal/api"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
)

// DocumentWebhook godoc
// @Summary      Document insert notification
// @Description  Called by the database on a new document row. Acknowledges immediately and ingests the document in the background.
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        request  body      api.WebhookRequest   true  "Inserted record"
// @Success      202      {object}  api.InitJobResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /webhooks/documents [post]
func (h *Handler) DocumentWebhook(w http.ResponseWriter, r *http.Request) {
	var req api.WebhookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "", err)
		return
	}
	documentId := strings.TrimSpace(req.Record.Id)
	if documentId == "" {
		h.writeError(w, r, "", fmt.Errorf("%w: record.id is required", commonModels.ErrInvalidInput))
		return
	}

	// the pipeline reports a missing document through the job; no lookup here
	job, err := h.jobs.Submit(r.Context(), jobModel.JobTypeIngest, jobModel.JobPayload{DocumentId: documentId})
	if err != nil {
		h.writeError(w, r, documentId, err)
		return
	}
	h.logger.WithTrace(r.Context()).Info("webhook queued ingestion", "documentId", documentId, "jobId", job.Id)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(job.Id))
}
