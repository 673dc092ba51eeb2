package analyses

import (
	"context"
	"errors"
	"net/http"

	"github.com/JaimeStill/emotionwave/internal/classifier"
	"github.com/JaimeStill/emotionwave/internal/images"
)

// Domain errors for analysis operations.
var (
	ErrNotFound    = errors.New("analysis not found")
	ErrDuplicate   = errors.New("analysis already exists")
	ErrInvalidID   = errors.New("invalid analysis id")
	ErrPersistence = errors.New("failed to store analysis")
)

// MapHTTPStatus maps analysis, image and classifier errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, images.ErrNoFile),
		errors.Is(err, images.ErrTooLarge),
		errors.Is(err, images.ErrUnsupported):
		return images.MapHTTPStatus(err)
	case errors.Is(err, classifier.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, classifier.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// stateOf classifies a failed analyze request by its terminal state.
func stateOf(err error) State {
	switch {
	case errors.Is(err, images.ErrNoFile),
		errors.Is(err, images.ErrTooLarge),
		errors.Is(err, images.ErrUnsupported):
		return StateRejected
	case errors.Is(err, classifier.ErrBusy):
		return StateBusy
	case errors.Is(err, context.Canceled):
		return StateCancelled
	case errors.Is(err, classifier.ErrOutputInvalid):
		return StateOutputInvalid
	case errors.Is(err, ErrPersistence):
		return StatePersistFailed
	}
	return StateProcessFailed
}
