// Package images accepts uploaded photos, validates them against an
// allow-list, stores them under generated keys and serves them back.
package images

import (
	"time"
)

// RoutePrefix is the mount point of the upload file server. Image URLs are
// built as <base>/uploads/<key>.
const RoutePrefix = "/uploads"

// Image is a validated upload held in storage.
type Image struct {
	Key         string    `json:"key"`
	Extension   string    `json:"extension"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	URL         string    `json:"url"`
	StoredAt    time.Time `json:"stored_at"`
}

// Upload is the raw multipart file part as received from the client.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}
