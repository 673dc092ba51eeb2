// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/emotionwave/internal/config"
	"github.com/JaimeStill/emotionwave/internal/images"
	"github.com/JaimeStill/emotionwave/internal/infrastructure"
	"github.com/JaimeStill/emotionwave/pkg/middleware"
	"github.com/JaimeStill/emotionwave/pkg/module"
	"github.com/JaimeStill/emotionwave/pkg/routes"
)

// Modules are the HTTP modules mounted by the server.
type Modules struct {
	API     *module.Module
	Uploads *module.Module
}

// NewModules creates the API and uploads modules with all domain handlers
// and middleware.
func NewModules(cfg *config.Config, infra *infrastructure.Infrastructure) (*Modules, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	specBytes, err := Document(cfg, domain, runtime)
	if err != nil {
		return nil, err
	}

	apiMux := http.NewServeMux()
	registerRoutes(apiMux, domain, runtime, specBytes)

	api := module.New(cfg.API.BasePath, apiMux)
	api.Use(middleware.CORS(&cfg.API.CORS))
	api.Use(middleware.Logger(runtime.Logger))
	api.Use(middleware.Recover(runtime.Logger))

	uploadsMux := http.NewServeMux()
	routes.Register(uploadsMux, domain.Images.Handler().Routes())

	uploads := module.New(images.RoutePrefix, uploadsMux)
	uploads.Use(middleware.Logger(runtime.Logger))
	uploads.Use(middleware.Recover(runtime.Logger))

	return &Modules{API: api, Uploads: uploads}, nil
}

// Mount registers every module on router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Uploads)
}
