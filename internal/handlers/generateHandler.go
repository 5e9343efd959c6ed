package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/BrandVoice/internal/adapter"
	"github.com/akolanti/BrandVoice/internal/adapter/utils"
	"github.com/akolanti/BrandVoice/internal/api"
	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/rag"
)

// Generate godoc
// @Summary      Generate on-brand content
// @Description  Assembles a brand-grounded prompt and generates text. With "stream": true the response is text/event-stream with "message" events carrying fragments, then "done" (sources) or "error".
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Produce      text/event-stream
// @Param        X-User-Id  header    string               true  "Tenant user id"
// @Param        brandId    path      string               true  "Brand ID"
// @Param        request    body      api.GenerateRequest  true  "Prompt and options"
// @Success      200        {object}  api.GenerateResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      402        {object}  api.ErrorResponse  "Monthly word quota exhausted"
// @Failure      404        {object}  api.ErrorResponse
// @Failure      422        {object}  api.ErrorResponse  "Content policy violation"
// @Failure      503        {object}  api.ErrorResponse
// @Router       /brands/{brandId}/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	brandId := utils.GetChiURLParam(r, "brandId")
	if _, err := h.ownedBrand(ctx, brandId); err != nil {
		h.writeError(w, r, brandId, err)
		return
	}

	var req api.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, brandId, err)
		return
	}
	words := req.WordCount
	if words <= 0 {
		words = config.DefaultWordCount
	}
	if words > config.MaxWordCount {
		h.writeError(w, r, brandId, fmt.Errorf("%w: word_count above %d", commonModels.ErrInvalidInput, config.MaxWordCount))
		return
	}

	user := userId(ctx)
	allowed, err := h.gate.Allowed(ctx, user, words)
	if err != nil {
		h.writeError(w, r, brandId, err)
		return
	}
	if !allowed {
		WriteErrorResponse(w, http.StatusPaymentRequired, brandId, "monthly word quota exhausted")
		return
	}

	res, err := h.rag.Generate(ctx, rag.GenerateRequest{BrandId: brandId, Prompt: req.Prompt, Words: words, Stream: req.Stream})
	if err != nil {
		h.writeError(w, r, brandId, err)
		return
	}

	if !req.Stream {
		h.gate.Record(ctx, user, res.Output.Text)
		writeJsonResponse(w, http.StatusOK, api.GenerateResponse{Text: res.Output.Text, Sources: res.Prompt.Sources})
		return
	}
	h.stream(w, r, user, res)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, user string, res rag.GenerateResult) {
	log := h.logger.WithTrace(r.Context())
	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	var text strings.Builder
	failed := false
	for fragment, err := range res.Output.Fragments {
		if err != nil {
			log.Warn("stream ended with error", "error", err)
			writeEvent(w, "error", adapter.ToErrorResponse("", err))
			failed = true
			break
		}
		text.WriteString(fragment)
		if err := writeEvent(w, "message", api.StreamFragment{Text: fragment}); err != nil {
			// client went away; breaking releases the provider stream
			log.Info("client disconnected mid-stream", "error", err)
			failed = true
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if !failed {
		writeEvent(w, "done", api.StreamDone{Sources: res.Prompt.Sources})
	}
	if flusher != nil {
		flusher.Flush()
	}
	// words already delivered count even when the stream broke off, and by then
	// the request context is usually cancelled
	h.gate.Record(context.WithoutCancel(r.Context()), user, text.String())
}

func writeEvent(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
