package handlers

import (
	"net/http"

	"github.com/akolanti/BrandVoice/internal/adapter"
	"github.com/akolanti/BrandVoice/internal/adapter/utils"
)

// GetJobStatus godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a background ingestion or profile job.
// @Tags         Jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse    "The current status of the job"
// @Failure      404  {object}  api.ErrorResponse  "Job not found"
// @Router       /jobs/{id} [get]
func (h *Handler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	result, isFound := h.jobs.GetJob(r.Context(), id)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, id, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}
