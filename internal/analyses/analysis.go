// Package analyses implements the analysis domain: it runs uploaded images
// through the classifier, records each successful classification and serves
// the recorded history.
package analyses

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is one recorded classification of an uploaded image.
type Analysis struct {
	ID          uuid.UUID `json:"id"`
	ImageKey    string    `json:"image_key"`
	ImageURL    string    `json:"image_url"`
	Sentiment   string    `json:"sentiment"`
	Emotion     string    `json:"emotion"`
	Confidence  float64   `json:"confidence"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Result is the flat body returned by the analyze endpoint.
type Result struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Emotion   string    `json:"emotion"`
	Score     float64   `json:"score"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Result converts the record into the analyze response shape.
func (a *Analysis) Result() Result {
	return Result{
		ID:        a.ID,
		Label:     a.Sentiment,
		Emotion:   a.Emotion,
		Score:     a.Confidence,
		ImageURL:  a.ImageURL,
		CreatedAt: a.CreatedAt,
	}
}

// State is a step of a single analyze request.
type State string

// Request states. Everything after StateRunning is terminal.
const (
	StateReceived      State = "RECEIVED"
	StateRunning       State = "PROCESS_RUNNING"
	StateRejected      State = "REJECTED"
	StateBusy          State = "BUSY"
	StateCancelled     State = "CANCELLED"
	StateProcessFailed State = "PROCESS_FAILED"
	StateOutputInvalid State = "OUTPUT_INVALID"
	StatePersistFailed State = "PERSIST_FAILED"
	StateCompleted     State = "COMPLETED"
)
