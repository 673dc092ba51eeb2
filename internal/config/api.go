package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/JaimeStill/emotionwave/pkg/formatting"
	"github.com/JaimeStill/emotionwave/pkg/middleware"
	"github.com/JaimeStill/emotionwave/pkg/openapi"
	"github.com/JaimeStill/emotionwave/pkg/pagination"
)

const (
	EnvAPIBasePath      = "EMOTIONWAVE_API_BASE_PATH"
	EnvAPIMaxUploadSize = "EMOTIONWAVE_API_MAX_UPLOAD_SIZE"
	EnvAPIPublicURL     = "EMOTIONWAVE_API_PUBLIC_URL"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "EMOTIONWAVE_CORS_ENABLED",
	Origins:          "EMOTIONWAVE_CORS_ORIGINS",
	AllowedMethods:   "EMOTIONWAVE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "EMOTIONWAVE_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "EMOTIONWAVE_CORS_EXPOSED_HEADERS",
	AllowCredentials: "EMOTIONWAVE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "EMOTIONWAVE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "EMOTIONWAVE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "EMOTIONWAVE_PAGINATION_MAX_PAGE_SIZE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "EMOTIONWAVE_OPENAPI_TITLE",
	Description: "EMOTIONWAVE_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, upload limits, CORS, pagination and
// OpenAPI settings. PublicURL, when set, roots generated image URLs.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	PublicURL     string                `toml:"public_url"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs. version seeds the OpenAPI
// document version when none is configured.
func (c *APIConfig) Finalize(version string) error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	if c.OpenAPI.Version == "" {
		c.OpenAPI.Version = version
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPIPublicURL); v != "" {
		c.PublicURL = v
	}
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") || strings.Count(c.BasePath, "/") != 1 {
		return fmt.Errorf("base_path must be a single-level path such as /api: %q", c.BasePath)
	}
	if c.BasePath == "/uploads" {
		return fmt.Errorf("base_path /uploads is reserved for stored images")
	}
	if n, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	} else if n <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	if c.PublicURL != "" {
		u, err := url.Parse(c.PublicURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("public_url must be an absolute http(s) URL: %q", c.PublicURL)
		}
	}
	return nil
}
