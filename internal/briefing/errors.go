package briefing

import (
	"errors"
	"fmt"
)

// ErrGenerationTimeout is returned when the model does not answer within
// the configured deadline.
var ErrGenerationTimeout = errors.New("briefing generation timed out")

// GenerationError wraps an upstream model or transport failure.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("briefing generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// MalformedOutputError is returned when the model answers but the JSON
// does not match the expected briefing shape.
type MalformedOutputError struct {
	Reason string
}

func (e *MalformedOutputError) Error() string {
	return "malformed briefing output: " + e.Reason
}
