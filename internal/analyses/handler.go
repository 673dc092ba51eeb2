package analyses

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotionwave/internal/classifier"
	"github.com/JaimeStill/emotionwave/internal/images"
	"github.com/JaimeStill/emotionwave/pkg/handlers"
	"github.com/JaimeStill/emotionwave/pkg/pagination"
	"github.com/JaimeStill/emotionwave/pkg/routes"
)

// UploadField is the multipart field carrying the image.
const UploadField = "image"

// Client-facing messages for failed analyze requests.
const (
	MsgNoFile          = "No image uploaded"
	MsgTooLarge        = "Image exceeds maximum upload size"
	MsgUnsupported     = "Unsupported image"
	MsgBusy            = "Classifier at capacity, try again later"
	MsgTimeout         = "Emotion analysis timed out"
	MsgAnalysisFailed  = "Emotion analysis failed"
	MsgInvalidResponse = "Invalid response from classifier"
	MsgStoreFailed     = "Failed to store analysis"
)

// Handler provides HTTP endpoints for analysis operations.
type Handler struct {
	sys           System
	images        images.System
	diagnostics   bool
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
	retryAfter    time.Duration
}

// NewHandler creates a Handler. diagnostics controls whether classifier
// stderr is returned to clients; retryAfter is advertised when the
// classifier is at capacity.
func NewHandler(
	sys System,
	imgs images.System,
	diagnostics bool,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
	retryAfter time.Duration,
) *Handler {
	return &Handler{
		sys:           sys,
		images:        imgs,
		diagnostics:   diagnostics,
		logger:        logger.With("handler", "analyses"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
		retryAfter:    retryAfter,
	}
}

// Routes returns the route groups for analysis endpoints.
func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Prefix:  "/analyze",
			Tags:    []string{"Analyses"},
			Schemas: schemas,
			Routes: []routes.Route{
				{Method: "POST", Pattern: "", Handler: h.Analyze, OpenAPI: analyzeOperation},
			},
		},
		{
			Prefix: "/analyses",
			Tags:   []string{"Analyses"},
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: listOperation},
				{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: findOperation},
			},
		},
	}
}

// Analyze accepts a multipart upload in the image field, classifies it and
// returns the recorded result.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	upload, err := images.ReadUpload(w, r, UploadField, h.maxUploadSize)
	if err != nil {
		h.fail(w, err)
		return
	}

	a, err := h.sys.Analyze(r.Context(), upload, h.images.BaseURL(r))
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a.Result())
}

// List returns a paginated, newest-first history of analyses.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single analysis by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	a, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// fail writes the error response for a failed analyze request. Internal
// causes are logged but only the category reaches the client, plus
// classifier diagnostics when enabled.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		h.logger.Info("client went away before analysis finished", "error", err)
		return
	}

	status := MapHTTPStatus(err)

	var reject *images.RejectError
	var exitErr *classifier.ExitError

	switch {
	case errors.As(err, &reject):
		handlers.RespondErrorDetail(w, h.logger, status, MsgUnsupported, reject.Reason, err)

	case errors.Is(err, images.ErrNoFile):
		handlers.RespondErrorDetail(w, h.logger, status, MsgNoFile, "", err)

	case errors.Is(err, images.ErrTooLarge):
		handlers.RespondErrorDetail(w, h.logger, status, MsgTooLarge, "limit "+strconv.FormatInt(h.maxUploadSize, 10)+" bytes", err)

	case errors.Is(err, classifier.ErrBusy):
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(h.retryAfter.Seconds()))))
		handlers.RespondErrorDetail(w, h.logger, status, MsgBusy, "", err)

	case errors.Is(err, classifier.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		handlers.RespondErrorDetail(w, h.logger, status, MsgTimeout, "", err)

	case errors.As(err, &exitErr):
		handlers.RespondErrorDetail(w, h.logger, status, MsgAnalysisFailed, h.diagnostic(exitErr.Stderr), err)

	case errors.Is(err, classifier.ErrExecutionFailed):
		handlers.RespondErrorDetail(w, h.logger, status, MsgAnalysisFailed, "", err)

	case errors.Is(err, classifier.ErrOutputInvalid):
		handlers.RespondErrorDetail(w, h.logger, status, MsgInvalidResponse, h.diagnostic(err.Error()), err)

	case errors.Is(err, ErrPersistence):
		handlers.RespondErrorDetail(w, h.logger, status, MsgStoreFailed, "", err)

	default:
		handlers.RespondErrorDetail(w, h.logger, status, http.StatusText(status), "", err)
	}
}

func (h *Handler) diagnostic(text string) string {
	if !h.diagnostics {
		return ""
	}
	return text
}
