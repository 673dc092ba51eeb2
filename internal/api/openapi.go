package api

import (
	"fmt"

	"github.com/JaimeStill/emotionwave/internal/config"
	"github.com/JaimeStill/emotionwave/internal/images"
	"github.com/JaimeStill/emotionwave/pkg/openapi"
	"github.com/JaimeStill/emotionwave/pkg/routes"
)

// BuildSpec describes every API and upload route in one OpenAPI document.
func BuildSpec(cfg *config.Config, domain *Domain, runtime *Runtime) *openapi.Spec {
	spec := cfg.API.OpenAPI.NewSpec(cfg.API.PublicURL)

	routes.Describe(spec, cfg.API.BasePath, apiGroups(domain, runtime)...)
	routes.Describe(spec, images.RoutePrefix, domain.Images.Handler().Routes())

	return spec
}

// Document returns the serialized OpenAPI document.
func Document(cfg *config.Config, domain *Domain, runtime *Runtime) ([]byte, error) {
	data, err := openapi.MarshalJSON(BuildSpec(cfg, domain, runtime))
	if err != nil {
		return nil, fmt.Errorf("openapi document: %w", err)
	}
	return data, nil
}
