package analyses

import "github.com/JaimeStill/emotionwave/pkg/openapi"

var scoreMin, scoreMax = 0.0, 1.0

var schemas = map[string]*openapi.Schema{
	"AnalysisResult": {
		Type:     "object",
		Required: []string{"id", "label", "emotion", "score", "image_url", "created_at"},
		Properties: map[string]*openapi.Schema{
			"id":         {Type: "string", Format: "uuid"},
			"label":      {Type: "string", Description: "Sentiment label", Example: "positive"},
			"emotion":    {Type: "string", Example: "joy"},
			"score":      {Type: "number", Description: "Confidence in [0,1]", Minimum: &scoreMin, Maximum: &scoreMax},
			"image_url":  {Type: "string", Format: "uri"},
			"created_at": {Type: "string", Format: "date-time"},
		},
	},
	"Analysis": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":           {Type: "string", Format: "uuid"},
			"image_key":    {Type: "string"},
			"image_url":    {Type: "string", Format: "uri"},
			"sentiment":    {Type: "string"},
			"emotion":      {Type: "string"},
			"confidence":   {Type: "number", Minimum: &scoreMin, Maximum: &scoreMax},
			"content_type": {Type: "string"},
			"size_bytes":   {Type: "integer", Format: "int64"},
			"created_at":   {Type: "string", Format: "date-time"},
		},
	},
	"AnalysisPage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef("Analysis")},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	},
}

var analyzeOperation = &openapi.Operation{
	Summary:     "Analyze an image",
	Description: "Validates and stores the uploaded image, runs the emotion classifier on it and records the result.",
	RequestBody: openapi.RequestBodyMultipartFile(UploadField, "PNG, JPEG, GIF, WebP or BMP image"),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Recorded analysis", "AnalysisResult"),
		400: openapi.ResponseRef("BadRequest"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		415: openapi.ResponseRef("UnsupportedMediaType"),
		500: openapi.ResponseRef("InternalError"),
		503: openapi.ResponseRef("ServiceUnavailable"),
		504: openapi.ResponseRef("GatewayTimeout"),
	},
}

var listOperation = &openapi.Operation{
	Summary:     "List analyses",
	Description: "Returns recorded analyses, newest first unless sort is given.",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", "Case-insensitive match on sentiment or emotion", false),
		openapi.QueryParam("sort", "string", "Comma-separated fields, prefix - for descending. Example: -created_at", false),
		openapi.QueryParam("sentiment", "string", "Exact sentiment filter", false),
		openapi.QueryParam("emotion", "string", "Exact emotion filter", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Page of analyses", "AnalysisPage"),
		500: openapi.ResponseRef("InternalError"),
	},
}

var findOperation = &openapi.Operation{
	Summary: "Find an analysis",
	Parameters: []*openapi.Parameter{
		openapi.PathParam("id", "Analysis UUID"),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Analysis", "Analysis"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}
