package api

import (
	"github.com/JaimeStill/emotionwave/internal/analyses"
	"github.com/JaimeStill/emotionwave/internal/images"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Analyses analyses.System
	Images   images.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	imagesSystem := images.New(
		runtime.Images,
		runtime.Storage,
		runtime.Logger,
		runtime.PublicURL,
	)

	analysesSystem := analyses.New(
		runtime.Database.Connection(),
		runtime.Database.Dialect(),
		imagesSystem,
		runtime.Classifier,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Analyses: analysesSystem,
		Images:   imagesSystem,
	}
}
