package analyses

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotionwave/internal/images"
	"github.com/JaimeStill/emotionwave/pkg/pagination"
)

// System defines the public contract for analysis domain operations.
type System interface {
	Handler(maxUploadSize int64, retryAfter time.Duration) *Handler

	// Analyze stores and classifies the upload and records the result. A
	// result is returned only once it has been recorded.
	Analyze(ctx context.Context, upload *images.Upload, baseURL string) (*Analysis, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Analysis], error)

	Find(ctx context.Context, id uuid.UUID) (*Analysis, error)
}
