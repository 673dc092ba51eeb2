package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type inspection struct {
	contentType string
	extension   string
	width       int
	height      int
}

// inspect checks an upload against cfg before it reaches storage. The
// declared part type, when specific, must be allowed and agree with the
// sniffed type; the sniffed type must be allowed; the header must decode
// within the dimension limit.
func inspect(cfg *Config, upload *Upload) (*inspection, error) {
	if len(upload.Data) == 0 {
		return nil, ErrNoFile
	}

	declared := normalizeType(upload.ContentType)
	specific := declared != "" && declared != "application/octet-stream"

	if specific && !cfg.Allowed(declared) {
		return nil, reject(fmt.Sprintf("declared type %s is not allowed", declared))
	}

	mt := mimetype.Detect(upload.Data)
	sniffed := normalizeType(mt.String())

	if !cfg.Allowed(sniffed) {
		return nil, reject(fmt.Sprintf("content detected as %s", sniffed))
	}
	if specific && declared != sniffed {
		return nil, reject(fmt.Sprintf("declared type %s does not match content type %s", declared, sniffed))
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, reject(fmt.Sprintf("image header could not be decoded: %v", err))
	}
	if header.Width < 1 || header.Height < 1 {
		return nil, reject("image has no pixels")
	}
	if header.Width > cfg.MaxDimension || header.Height > cfg.MaxDimension {
		return nil, reject(fmt.Sprintf(
			"image is %dx%d, limit is %d per side",
			header.Width, header.Height, cfg.MaxDimension,
		))
	}

	return &inspection{
		contentType: sniffed,
		extension:   mt.Extension(),
		width:       header.Width,
		height:      header.Height,
	}, nil
}
