package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotionwave/pkg/storage"
)

const keyAttempts = 5

// System defines the public contract for image operations.
type System interface {
	Handler() *Handler

	// Save validates the upload and writes it to storage under a new key.
	// baseURL is the scheme and host the returned URL is rooted at.
	Save(ctx context.Context, upload *Upload, baseURL string) (*Image, error)

	// Locate returns a local filesystem path for the stored image. release
	// must be called once the caller no longer needs the path.
	Locate(ctx context.Context, img *Image) (path string, release func(), err error)

	// Delete removes a stored image.
	Delete(ctx context.Context, key string) error

	// BaseURL returns the configured public URL, or the scheme and host of r.
	BaseURL(r *http.Request) string
}

type images struct {
	cfg       *Config
	store     storage.System
	logger    *slog.Logger
	publicURL string
	now       func() time.Time
}

// New creates the image system. publicURL, when non-empty, overrides the
// request host in generated image URLs.
func New(cfg *Config, store storage.System, logger *slog.Logger, publicURL string) System {
	logger = logger.With("system", "images")
	if publicURL == "" {
		logger.Warn("public_url not set; image URLs are built from the request Host header and persisted")
	}

	return &images{
		cfg:       cfg,
		store:     store,
		logger:    logger,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

func (s *images) Handler() *Handler {
	return NewHandler(s.store, s.logger)
}

func (s *images) Save(ctx context.Context, upload *Upload, baseURL string) (*Image, error) {
	info, err := inspect(s.cfg, upload)
	if err != nil {
		s.logger.Warn(
			"upload rejected",
			"filename", upload.Filename,
			"declared_type", upload.ContentType,
			"size", len(upload.Data),
			"error", err,
		)
		return nil, err
	}

	key, err := s.newKey(ctx, info.extension)
	if err != nil {
		return nil, err
	}

	if err := s.store.Upload(ctx, key, bytes.NewReader(upload.Data), info.contentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	img := &Image{
		Key:         key,
		Extension:   info.extension,
		ContentType: info.contentType,
		SizeBytes:   int64(len(upload.Data)),
		Width:       info.width,
		Height:      info.height,
		URL:         imageURL(baseURL, key),
		StoredAt:    s.now().UTC(),
	}

	s.logger.Info(
		"image stored",
		"key", img.Key,
		"content_type", img.ContentType,
		"size", img.SizeBytes,
		"width", img.Width,
		"height", img.Height,
	)
	return img, nil
}

func (s *images) Locate(ctx context.Context, img *Image) (string, func(), error) {
	if locator, ok := s.store.(storage.Locator); ok {
		path, err := locator.Path(img.Key)
		if err != nil {
			return "", nil, err
		}
		return path, func() {}, nil
	}

	return s.stage(ctx, img)
}

// stage copies a remote blob into a temp file the classifier can read.
func (s *images) stage(ctx context.Context, img *Image) (string, func(), error) {
	blob, err := s.store.Download(ctx, img.Key)
	if err != nil {
		return "", nil, fmt.Errorf("stage image %s: %w", img.Key, err)
	}
	defer blob.Body.Close()

	tmp, err := os.CreateTemp("", "emotionwave-*"+img.Extension)
	if err != nil {
		return "", nil, fmt.Errorf("stage image %s: %w", img.Key, err)
	}

	release := func() {
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("staged image cleanup failed", "path", tmp.Name(), "error", err)
		}
	}

	if _, err := io.Copy(tmp, blob.Body); err != nil {
		tmp.Close()
		release()
		return "", nil, fmt.Errorf("stage image %s: %w", img.Key, err)
	}
	if err := tmp.Close(); err != nil {
		release()
		return "", nil, fmt.Errorf("stage image %s: %w", img.Key, err)
	}

	return tmp.Name(), release, nil
}

func (s *images) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete image %s: %w", key, err)
	}
	return nil
}

// BaseURL trusts r.Host and X-Forwarded-Proto only when no public URL is
// configured.
func (s *images) BaseURL(r *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	return scheme + "://" + r.Host
}

// newKey generates <unix-millis>-<8 hex><ext>, retrying on the rare
// collision with an existing blob.
func (s *images) newKey(ctx context.Context, ext string) (string, error) {
	for range keyAttempts {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")
		key := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), id[:8], ext)

		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check image key: %w", err)
		}
		if !exists {
			return key, nil
		}
	}
	return "", fmt.Errorf("no free image key after %d attempts", keyAttempts)
}

func imageURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + RoutePrefix + "/" + url.PathEscape(key)
}

// ReadUpload reads the single file part named field from a multipart
// request, limiting the body to maxSize bytes.
func ReadUpload(w http.ResponseWriter, r *http.Request, field string, maxSize int64) (*Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("%w: %w", ErrNoFile, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrNoFile
		}
		return nil, fmt.Errorf("%w: %w", ErrNoFile, err)
	}
	defer file.Close()

	return readPart(file, header)
}

func readPart(file multipart.File, header *multipart.FileHeader) (*Upload, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	return &Upload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}
