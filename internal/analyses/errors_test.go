package analyses_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JaimeStill/emotionwave/internal/analyses"
	"github.com/JaimeStill/emotionwave/internal/classifier"
	"github.com/JaimeStill/emotionwave/internal/images"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", analyses.ErrNotFound, http.StatusNotFound},
		{"invalid id", analyses.ErrInvalidID, http.StatusBadRequest},
		{"no file", images.ErrNoFile, http.StatusBadRequest},
		{"too large", images.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported", &images.RejectError{Reason: "text"}, http.StatusUnsupportedMediaType},
		{"busy", classifier.ErrBusy, http.StatusServiceUnavailable},
		{"timeout", fmt.Errorf("%w after 2m", classifier.ErrTimeout), http.StatusGatewayTimeout},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"exit error", &classifier.ExitError{Code: 2}, http.StatusInternalServerError},
		{"invalid output", classifier.ErrOutputInvalid, http.StatusInternalServerError},
		{"persistence", fmt.Errorf("%w: disk full", analyses.ErrPersistence), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analyses.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
