package images

import (
	"fmt"
	"mime"
	"os"
	"strconv"
	"strings"
)

// Config controls which uploads are accepted.
type Config struct {
	AllowedTypes []string `toml:"allowed_types"`
	MaxDimension int      `toml:"max_dimension"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	AllowedTypes string
	MaxDimension string
}

var defaultAllowedTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/bmp",
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.AllowedTypes != nil {
		c.AllowedTypes = overlay.AllowedTypes
	}
	if overlay.MaxDimension != 0 {
		c.MaxDimension = overlay.MaxDimension
	}
}

// Allowed reports whether the normalized media type is on the allow-list.
func (c *Config) Allowed(mediaType string) bool {
	mediaType = normalizeType(mediaType)
	for _, t := range c.AllowedTypes {
		if normalizeType(t) == mediaType {
			return true
		}
	}
	return false
}

func (c *Config) loadDefaults() {
	if len(c.AllowedTypes) == 0 {
		c.AllowedTypes = defaultAllowedTypes
	}
	if c.MaxDimension <= 0 {
		c.MaxDimension = 8192
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.AllowedTypes != "" {
		if v := os.Getenv(env.AllowedTypes); v != "" {
			var types []string
			for t := range strings.SplitSeq(v, ",") {
				if t = strings.TrimSpace(t); t != "" {
					types = append(types, t)
				}
			}
			c.AllowedTypes = types
		}
	}
	if env.MaxDimension != "" {
		if v := os.Getenv(env.MaxDimension); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxDimension = n
			}
		}
	}
}

func (c *Config) validate() error {
	if len(c.AllowedTypes) == 0 {
		return fmt.Errorf("allowed_types required")
	}
	for _, t := range c.AllowedTypes {
		if !strings.HasPrefix(normalizeType(t), "image/") {
			return fmt.Errorf("allowed_types entry %q is not an image type", t)
		}
	}
	if c.MaxDimension < 1 {
		return fmt.Errorf("max_dimension must be positive")
	}
	return nil
}

// normalizeType strips parameters, lowercases and folds known aliases.
func normalizeType(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		t = mt
	}
	t = strings.ToLower(strings.TrimSpace(t))

	switch t {
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	case "image/x-ms-bmp", "image/x-bmp":
		return "image/bmp"
	}
	return t
}
