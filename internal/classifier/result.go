package classifier

import "strings"

// Result is a validated classification of one image.
type Result struct {
	Label   string  `json:"label"`
	Emotion string  `json:"emotion"`
	Score   float64 `json:"score"`
}

// output is the wire form printed by the classifier. Score is a pointer so
// a missing value is distinguishable from zero.
type output struct {
	Label   string   `json:"label" validate:"required,max=64"`
	Emotion string   `json:"emotion" validate:"required,max=64"`
	Score   *float64 `json:"score" validate:"required,gte=0,lte=1"`
}

// trimmed returns a copy with surrounding whitespace removed, so blank
// strings fail validation. The untrimmed values are what gets returned.
func (o output) trimmed() output {
	o.Label = strings.TrimSpace(o.Label)
	o.Emotion = strings.TrimSpace(o.Emotion)
	return o
}

func (o *output) result() *Result {
	return &Result{
		Label:   o.Label,
		Emotion: o.Emotion,
		Score:   *o.Score,
	}
}
