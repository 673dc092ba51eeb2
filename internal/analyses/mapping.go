package analyses

import (
	"net/url"

	"github.com/JaimeStill/emotionwave/pkg/query"
	"github.com/JaimeStill/emotionwave/pkg/repository"
)

var projection = query.
	NewProjectionMap("analyses", "a").
	Project("id", "id").
	Project("image_key", "image_key").
	Project("image_url", "image_url").
	Project("sentiment", "sentiment").
	Project("emotion", "emotion").
	Project("confidence", "confidence").
	Project("content_type", "content_type").
	Project("size_bytes", "size_bytes").
	Project("created_at", "created_at")

var defaultSort = query.SortField{
	Field:      "created_at",
	Descending: true,
}

const returning = "id, image_key, image_url, sentiment, emotion, confidence, content_type, size_bytes, created_at"

// Filters contains optional exact-match criteria for history queries.
// Nil fields are ignored.
type Filters struct {
	Sentiment *string `json:"sentiment,omitempty"`
	Emotion   *string `json:"emotion,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("sentiment", f.Sentiment).
		WhereEquals("emotion", f.Emotion)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("sentiment"); s != "" {
		f.Sentiment = &s
	}

	if e := values.Get("emotion"); e != "" {
		f.Emotion = &e
	}

	return f
}

func scanAnalysis(s repository.Scanner) (Analysis, error) {
	var a Analysis
	err := s.Scan(
		&a.ID,
		&a.ImageKey,
		&a.ImageURL,
		&a.Sentiment,
		&a.Emotion,
		&a.Confidence,
		&a.ContentType,
		&a.SizeBytes,
		&a.CreatedAt,
	)
	return a, err
}
