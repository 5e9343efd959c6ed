package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/BrandVoice/internal/adapter"
	"github.com/akolanti/BrandVoice/internal/adapter/utils"
	"github.com/akolanti/BrandVoice/internal/api"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
)

// CreateBrand godoc
// @Summary      Create a brand
// @Description  Creates a brand owned by the calling user.
// @Tags         Brands
// @Accept       json
// @Produce      json
// @Param        X-User-Id  header    string                  true  "Tenant user id"
// @Param        request    body      api.CreateBrandRequest  true  "Brand name"
// @Success      201        {object}  api.BrandResponse
// @Failure      400        {object}  api.ErrorResponse
// @Router       /brands [post]
func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.CreateBrandRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.writeError(w, r, "", fmt.Errorf("%w: name is required", commonModels.ErrInvalidInput))
		return
	}

	brand, err := h.brands.CreateBrand(r.Context(), commonModels.Brand{OwnerId: userId(r.Context()), Name: req.Name})
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToBrandResponse(brand))
}

// GetProfile godoc
// @Summary      Get the brand style profile
// @Description  Returns the stored style profile and memory facts, or the neutral profile when none was built yet.
// @Tags         Brands
// @Produce      json
// @Param        X-User-Id  header    string  true  "Tenant user id"
// @Param        brandId    path      string  true  "Brand ID"
// @Success      200        {object}  api.ProfileResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /brands/{brandId}/profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	brandId := utils.GetChiURLParam(r, "brandId")
	if _, err := h.ownedBrand(r.Context(), brandId); err != nil {
		h.writeError(w, r, brandId, err)
		return
	}

	profile, found, err := h.brands.GetProfile(r.Context(), brandId)
	if err != nil {
		h.writeError(w, r, brandId, err)
		return
	}
	facts, err := h.brands.GetMemoryFacts(r.Context(), brandId)
	if err != nil {
		h.writeError(w, r, brandId, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToProfileResponse(brandId, profile, found, facts))
}

// RebuildProfile godoc
// @Summary      Rebuild the brand style profile
// @Description  Queues a background job that rebuilds the style profile and memory facts from all brand documents.
// @Tags         Brands
// @Produce      json
// @Param        X-User-Id  header    string  true  "Tenant user id"
// @Param        brandId    path      string  true  "Brand ID"
// @Success      202        {object}  api.InitJobResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /brands/{brandId}/profile [post]
func (h *Handler) RebuildProfile(w http.ResponseWriter, r *http.Request) {
	brandId := utils.GetChiURLParam(r, "brandId")
	if _, err := h.ownedBrand(r.Context(), brandId); err != nil {
		h.writeError(w, r, brandId, err)
		return
	}

	job, err := h.jobs.Submit(r.Context(), jobModel.JobTypeRebuildProfile, jobModel.JobPayload{BrandId: brandId})
	if err != nil {
		h.writeError(w, r, brandId, err)
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(job.Id))
}
