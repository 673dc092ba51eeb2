package images

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/emotionwave/pkg/storage"
)

// Domain errors for image operations.
var (
	ErrNoFile      = errors.New("no image uploaded")
	ErrTooLarge    = errors.New("image exceeds maximum upload size")
	ErrUnsupported = errors.New("unsupported image")
	ErrNotFound    = errors.New("image not found")
)

// RejectError describes why an upload failed validation.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string {
	return ErrUnsupported.Error() + ": " + e.Reason
}

func (e *RejectError) Unwrap() error {
	return ErrUnsupported
}

func reject(reason string) error {
	return &RejectError{Reason: reason}
}

// MapHTTPStatus maps image domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoFile) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrUnsupported) {
		return http.StatusUnsupportedMediaType
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return storage.MapHTTPStatus(err)
}
