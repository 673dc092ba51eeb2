package api

import (
	"time"

	"github.com/JaimeStill/emotionwave/internal/config"
	"github.com/JaimeStill/emotionwave/internal/images"
	"github.com/JaimeStill/emotionwave/internal/infrastructure"
	"github.com/JaimeStill/emotionwave/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Images        *images.Config
	Pagination    pagination.Config
	MaxUploadSize int64
	RetryAfter    time.Duration
	PublicURL     string
}

// NewRuntime creates an API runtime with a module-scoped logger.
// RetryAfter mirrors the classifier queue timeout: a busy response
// suggests waiting at least as long as a request would have queued.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:  infra.Lifecycle,
			Logger:     infra.Logger.With("module", "api"),
			Database:   infra.Database,
			Storage:    infra.Storage,
			Classifier: infra.Classifier,
		},
		Images:        &cfg.Images,
		Pagination:    cfg.API.Pagination,
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
		RetryAfter:    cfg.Classifier.QueueTimeoutDuration(),
		PublicURL:     cfg.API.PublicURL,
	}
}
