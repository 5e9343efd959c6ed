package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type SourceType string

const (
	SourcePDF      SourceType = "pdf"
	SourceDocument SourceType = "document"

	pageTimeout = 10 * time.Second
)

// DetectType maps an upload's file name to an extractor.
func DetectType(filename string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return SourcePDF, nil
	case ".docx", ".odt", ".rtf", ".txt", ".md":
		return SourceDocument, nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", commonModels.ErrInvalidInput, filepath.Ext(filename))
	}
}

// ExtractFile returns the plain text of the file at path; filename decides the format.
// PDF pages are separated by a blank line.
func ExtractFile(path, filename string) (string, error) {
	log := logger_i.NewLogger("source_extraction").With("filename", filename)

	sourceType, err := DetectType(filename)
	if err != nil {
		return "", err
	}

	var text string
	switch sourceType {
	case SourcePDF:
		text, err = extractPDF(path, log)
	default:
		text, err = extractDocument(path, log)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text found in %s", commonModels.ErrInvalidInput, filename)
	}
	return text, nil
}

func extractPDF(path string, log *logger_i.Logger) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		log.Error("failed opening of pdf file", "error", err)
		return "", fmt.Errorf("%w: failed to open pdf: %w", commonModels.ErrInvalidInput, err)
	}

	numPages := f.NumPage()
	log.Debug("extractPDF", "pages", numPages)
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			// skip the page, keep the rest of the document
			log.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// extractDocument reads .docx, .odt, .rtf and plain text.
func extractDocument(path string, log *logger_i.Logger) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		log.Error("Error extracting content from document", "error", err)
		return "", fmt.Errorf("%w: failed to extract document: %w", commonModels.ErrInvalidInput, err)
	}
	return text, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageTimeout):
		return "", errors.New("page extraction timeout")
	}
}
