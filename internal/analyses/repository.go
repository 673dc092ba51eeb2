package analyses

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotionwave/internal/classifier"
	"github.com/JaimeStill/emotionwave/internal/images"
	"github.com/JaimeStill/emotionwave/pkg/pagination"
	"github.com/JaimeStill/emotionwave/pkg/query"
	"github.com/JaimeStill/emotionwave/pkg/repository"
)

type repo struct {
	db         *sql.DB
	dialect    query.Dialect
	images     images.System
	classifier classifier.System
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates an analysis repository implementing the System interface.
func New(
	db *sql.DB,
	dialect query.Dialect,
	imgs images.System,
	cls classifier.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		dialect:    dialect,
		images:     imgs,
		classifier: cls,
		logger:     logger.With("system", "analyses"),
		pagination: pagination,
		now:        time.Now,
	}
}

func (r *repo) Handler(maxUploadSize int64, retryAfter time.Duration) *Handler {
	return NewHandler(r, r.images, r.classifier.ExposeDiagnostics(), r.logger, r.pagination, maxUploadSize, retryAfter)
}

func (r *repo) Analyze(ctx context.Context, upload *images.Upload, baseURL string) (*Analysis, error) {
	start := time.Now()
	logger := r.logger.With("filename", upload.Filename, "size", len(upload.Data))
	logger.Debug("analysis state", "state", StateReceived)

	img, err := r.images.Save(ctx, upload, baseURL)
	if err != nil {
		if stateOf(err) != StateRejected {
			err = fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		r.finish(logger, start, err)
		return nil, err
	}
	logger = logger.With("image_key", img.Key)

	result, err := r.classify(ctx, logger, img)
	if err != nil {
		r.discard(ctx, logger, img)
		r.finish(logger, start, err)
		return nil, err
	}
	logger = logger.With("label", result.Label, "emotion", result.Emotion, "score", result.Score)

	a, err := r.insert(ctx, img, result)
	if err != nil {
		r.discard(ctx, logger, img)
		err = fmt.Errorf("%w: %w", ErrPersistence, err)
		r.finish(logger, start, err)
		return nil, err
	}

	logger.Info("analysis state", "state", StateCompleted, "id", a.ID, "duration", time.Since(start))
	return &a, nil
}

func (r *repo) classify(ctx context.Context, logger *slog.Logger, img *images.Image) (*classifier.Result, error) {
	path, release, err := r.images.Locate(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%w: locate image: %w", classifier.ErrExecutionFailed, err)
	}
	defer release()

	logger.Debug("analysis state", "state", StateRunning)
	return r.classifier.Classify(ctx, path)
}

// discard removes an image whose analysis will never be recorded. It runs
// even when the request context is already cancelled.
func (r *repo) discard(ctx context.Context, logger *slog.Logger, img *images.Image) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := r.images.Delete(ctx, img.Key); err != nil {
		logger.Warn("compensating image delete failed", "error", err)
	}
}

func (r *repo) finish(logger *slog.Logger, start time.Time, err error) {
	state := stateOf(err)

	level := slog.LevelError
	switch state {
	case StateRejected, StateBusy:
		level = slog.LevelWarn
	case StateCancelled:
		level = slog.LevelInfo
	}

	logger.Log(context.Background(), level, "analysis state",
		"state", state,
		"error", err,
		"duration", time.Since(start),
	)
}

func (r *repo) insert(ctx context.Context, img *images.Image, result *classifier.Result) (Analysis, error) {
	q := fmt.Sprintf(
		"INSERT INTO analyses (%s) VALUES (%s) RETURNING %s",
		returning,
		strings.Join(query.Placeholders(r.dialect, 9), ", "),
		returning,
	)

	args := []any{
		uuid.New(),
		img.Key,
		img.URL,
		result.Label,
		result.Emotion,
		result.Score,
		img.ContentType,
		img.SizeBytes,
		r.now().UTC().Truncate(time.Microsecond),
	}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Analysis, error) {
		return repository.QueryOne(ctx, tx, q, args, scanAnalysis)
	})
	if err != nil {
		return Analysis{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return a, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Analysis], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(r.dialect, projection, defaultSort).
		WhereSearch(page.Search, "sentiment", "emotion")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count analyses: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAnalysis)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	q, args := query.NewBuilder(r.dialect, projection).BuildSingle("id", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAnalysis)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}
