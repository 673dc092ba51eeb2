package images

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/emotionwave/pkg/handlers"
	"github.com/JaimeStill/emotionwave/pkg/openapi"
	"github.com/JaimeStill/emotionwave/pkg/routes"
	"github.com/JaimeStill/emotionwave/pkg/storage"
)

// Handler serves stored images.
type Handler struct {
	store  storage.System
	logger *slog.Logger
}

// NewHandler creates a Handler reading from store.
func NewHandler(store storage.System, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("handler", "uploads"),
	}
}

// Routes returns the route group for the upload file server. Patterns are
// relative to RoutePrefix.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags: []string{"Uploads"},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/{filename}",
				Handler: h.Serve,
				OpenAPI: &openapi.Operation{
					Summary:     "Fetch a stored image",
					Description: "Streams an uploaded image with its detected content type.",
					Parameters: []*openapi.Parameter{
						openapi.PathParamString("filename", "Generated image filename returned as part of image_url"),
					},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseBinary("Image bytes", "image/png", "image/jpeg", "image/gif", "image/webp", "image/bmp"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
		},
	}
}

// Serve streams the image named by the filename path parameter.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("filename")

	blob, err := h.store.Download(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = ErrNotFound
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", key))

	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}

	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("image stream interrupted", "key", key, "error", err)
	}
}
