package routes

import (
	"net/http"

	"github.com/JaimeStill/emotionwave/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. OpenAPI, when set,
// describes the route in the generated API document.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
