package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrParseFailed is returned when content is not exactly one JSON value.
var ErrParseFailed = errors.New("failed to parse response")

// Parse decodes the whole of content as a single JSON value into T.
// Surrounding whitespace is allowed; any other text before or after the
// value, including a second value, is an error.
func Parse[T any](content string) (T, error) {
	var result T

	dec := json.NewDecoder(strings.NewReader(content))
	if err := dec.Decode(&result); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w: %s", ErrParseFailed, err, truncate(content, 256))
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		var zero T
		return zero, fmt.Errorf("%w: unexpected data after JSON value: %s", ErrParseFailed, truncate(content, 256))
	}

	return result, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
