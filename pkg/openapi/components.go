package openapi

import "maps"

// NewComponents creates Components with the shared error body, pagination
// schema and the error responses every endpoint can return.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error":   {Type: "string", Description: "Error message"},
					"details": {Type: "string", Description: "Diagnostic detail, when available"},
				},
			},
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
					"search":    {Type: "string", Description: "Search query"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending. Example: emotion,-created_at"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":           errorResponse("Invalid request"),
			"NotFound":             errorResponse("Resource not found"),
			"PayloadTooLarge":      errorResponse("Request body exceeds the upload limit"),
			"UnsupportedMediaType": errorResponse("Upload is not an accepted image"),
			"InternalError":        errorResponse("Processing failed"),
			"ServiceUnavailable":   errorResponse("Service is at capacity; retry after the Retry-After interval"),
			"GatewayTimeout":       errorResponse("Processing exceeded its time limit"),
		},
	}
}

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
