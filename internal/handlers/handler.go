package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akolanti/BrandVoice/internal/adapter"
	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/job"
	"github.com/akolanti/BrandVoice/internal/rag"
	"github.com/akolanti/BrandVoice/internal/usage"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

// Handler serves the HTTP surface. It checks tenancy and the usage gate; the rag
// core behind it never sees HTTP or billing concerns.
type Handler struct {
	jobs      *job.Service
	rag       rag.Service
	documents commonModels.DocumentStore
	brands    commonModels.BrandStore
	gate      *usage.Gate
	logger    *logger_i.Logger
}

type Deps struct {
	Jobs      *job.Service
	Rag       rag.Service
	Documents commonModels.DocumentStore
	Brands    commonModels.BrandStore
	Gate      *usage.Gate
}

func New(d Deps) *Handler {
	return &Handler{
		jobs:      d.Jobs,
		rag:       d.Rag,
		documents: d.Documents,
		brands:    d.Brands,
		gate:      d.Gate,
		logger:    logger_i.NewLogger("request_handler"),
	}
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone, nothing left to report to the client
		logger_i.NewLogger("request_handler").Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, message, httpCode))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, id string, err error) {
	res := adapter.ToErrorResponse(id, err)
	log := h.logger.WithTrace(r.Context()).With("path", r.URL.Path, "status", res.Error.Code)
	if res.Error.Code >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	} else {
		log.Warn("request rejected", "error", err)
	}
	writeJsonResponse(w, res.Error.Code, res)
}

func userId(ctx context.Context) string {
	id, _ := ctx.Value(config.USER_ID_KEY).(string)
	return id
}

func validateContext(ctx context.Context) bool {
	return ctx.Err() == nil
}

// ownedBrand loads the brand and hides brands of other tenants as not found.
func (h *Handler) ownedBrand(ctx context.Context, brandId string) (commonModels.Brand, error) {
	brand, err := h.brands.GetBrand(ctx, brandId)
	if err != nil {
		return commonModels.Brand{}, err
	}
	if brand.OwnerId != userId(ctx) {
		return commonModels.Brand{}, fmt.Errorf("%w: %s", commonModels.ErrBrandNotFound, brandId)
	}
	return brand, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxUploadSize))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %w", commonModels.ErrInvalidInput, err)
	}
	return nil
}
