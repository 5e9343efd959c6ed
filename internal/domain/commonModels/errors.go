package commonModels

import (
	"context"
	"errors"
	"net/http"
)

var (
	// caller bug, never retried
	ErrInvalidArgument = errors.New("invalid argument")
	// bad content, surfaced to the user
	ErrInvalidInput = errors.New("invalid input")

	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	ErrIndexUnavailable     = errors.New("vector index unavailable")
	ErrModelUnavailable     = errors.New("completion model unavailable")
	ErrRateLimited          = errors.New("rate limited")
	ErrTimeout              = errors.New("timeout")

	// terminal: the same input will be refused again
	ErrContentPolicyViolation = errors.New("content policy violation")

	ErrDocumentNotFound = errors.New("document not found")
	ErrBrandNotFound    = errors.New("brand not found")

	// degradable: callers may fall back to reduced context or defaults
	ErrProfileGenerationFailed = errors.New("profile generation failed")
	ErrRetrievalFailed         = errors.New("retrieval failed")

	ErrIngestionInProgress = errors.New("ingestion already in progress")
)

func IsRetryable(err error) bool {
	return errors.Is(err, ErrEmbeddingUnavailable) ||
		errors.Is(err, ErrIndexUnavailable) ||
		errors.Is(err, ErrModelUnavailable) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrIngestionInProgress)
}

func IsDegradable(err error) bool {
	return errors.Is(err, ErrProfileGenerationFailed) || errors.Is(err, ErrRetrievalFailed)
}

// FromContext maps context termination onto the taxonomy; other errors pass through unchanged.
func FromContext(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}

// StatusCode is the HTTP status reported to clients for err.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrBrandNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIngestionInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrContentPolicyViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrEmbeddingUnavailable), errors.Is(err, ErrIndexUnavailable),
		errors.Is(err, ErrModelUnavailable), errors.Is(err, ErrRetrievalFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var publicErrors = []error{
	ErrDocumentNotFound, ErrBrandNotFound, ErrInvalidInput, ErrInvalidArgument,
	ErrIngestionInProgress, ErrContentPolicyViolation, ErrRateLimited, ErrTimeout,
	ErrEmbeddingUnavailable, ErrIndexUnavailable, ErrModelUnavailable,
	ErrProfileGenerationFailed, ErrRetrievalFailed,
}

// PublicMessage is the client-facing text for err: the taxonomy sentinel it wraps,
// never the provider detail behind it.
func PublicMessage(err error) string {
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "Internal Server Error"
}
