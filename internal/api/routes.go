package api

import (
	"net/http"

	"github.com/JaimeStill/emotionwave/pkg/openapi"
	"github.com/JaimeStill/emotionwave/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime, specBytes []byte) {
	routes.Register(mux, apiGroups(domain, runtime)...)
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))
}

func apiGroups(domain *Domain, runtime *Runtime) []routes.Group {
	return domain.Analyses.Handler(runtime.MaxUploadSize, runtime.RetryAfter).Routes()
}
