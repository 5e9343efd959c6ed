package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/akolanti/BrandVoice/internal/adapter"
	"github.com/akolanti/BrandVoice/internal/adapter/utils"
	"github.com/akolanti/BrandVoice/internal/api"
	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/rag/ingest"
)

// CreateDocument godoc
// @Summary      Submit a brand source document
// @Description  Accepts raw text as JSON or a PDF/DOCX/ODT/RTF/TXT file as multipart/form-data, stores it as pending and queues ingestion.
// @Tags         Documents
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        X-User-Id  header    string                     true   "Tenant user id"
// @Param        brandId    path      string                     true   "Brand ID"
// @Param        request    body      api.CreateDocumentRequest  false  "Text source (JSON)"
// @Param        name       formData  string                     false  "Display name (multipart)"
// @Param        document   formData  file                       false  "Source file (multipart)"
// @Success      202        {object}  api.DocumentResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /brands/{brandId}/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	brandId := utils.GetChiURLParam(r, "brandId")
	if _, err := h.ownedBrand(r.Context(), brandId); err != nil {
		h.writeError(w, r, brandId, err)
		return
	}

	var (
		name, content string
		err           error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		name, content, err = readUpload(w, r)
	} else {
		var req api.CreateDocumentRequest
		err = decodeJSON(w, r, &req)
		name, content = req.Name, req.Content
	}
	if err != nil {
		h.writeError(w, r, brandId, err)
		return
	}
	if nonSpaceLen(content) < config.MinContentLength {
		h.writeError(w, r, brandId, fmt.Errorf("%w: document content is too short", commonModels.ErrInvalidInput))
		return
	}

	doc, err := h.documents.CreateDocument(r.Context(), commonModels.Document{BrandId: brandId, Name: name, Content: content})
	if err != nil {
		h.writeError(w, r, brandId, err)
		return
	}

	job, err := h.jobs.Submit(r.Context(), jobModel.JobTypeIngest, jobModel.JobPayload{DocumentId: doc.Id, BrandId: brandId})
	if err != nil {
		// the document stays pending and can be re-triggered through the webhook
		h.writeError(w, r, doc.Id, err)
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToDocumentResponse(doc, job.Id))
}

// GetDocument godoc
// @Summary      Get document status
// @Description  Returns the ingestion status of a document of one of the caller's brands.
// @Tags         Documents
// @Produce      json
// @Param        X-User-Id  header    string  true  "Tenant user id"
// @Param        id         path      string  true  "Document ID"
// @Success      200        {object}  api.DocumentResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	doc, err := h.documents.GetDocument(r.Context(), id)
	if err != nil {
		h.writeError(w, r, id, err)
		return
	}
	if _, err := h.ownedBrand(r.Context(), doc.BrandId); err != nil {
		h.writeError(w, r, id, fmt.Errorf("%w: %s", commonModels.ErrDocumentNotFound, id))
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc, ""))
}

// readUpload copies the multipart file to a temporary file that keeps the
// original extension, since extraction is chosen by extension.
func readUpload(w http.ResponseWriter, r *http.Request) (string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		return "", "", fmt.Errorf("%w: file too large or bad request", commonModels.ErrInvalidInput)
	}

	fileReader, header, err := r.FormFile("document")
	if err != nil {
		return "", "", fmt.Errorf("%w: could not retrieve file", commonModels.ErrInvalidInput)
	}
	defer fileReader.Close()

	filename := filepath.Base(header.Filename)
	if _, err := ingest.DetectType(filename); err != nil {
		return "", "", err
	}

	tmp, err := os.CreateTemp("", "brandvoice-upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", "", fmt.Errorf("storage error: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, fileReader); err != nil {
		return "", "", fmt.Errorf("write error: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", "", fmt.Errorf("write error: %w", err)
	}

	content, err := ingest.ExtractFile(tmp.Name(), filename)
	if err != nil {
		return "", "", err
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = filename
	}
	return name, content, nil
}

func nonSpaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
