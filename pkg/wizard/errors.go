package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a project id cannot be resolved.
	ErrNotFound = errors.New("project not found")
	// ErrSessionNotFound is returned for unknown or expired wizard sessions.
	ErrSessionNotFound = errors.New("wizard session not found")
	// ErrDocumentNotFound is returned when a kind has no generated text.
	ErrDocumentNotFound = errors.New("document not generated")
	// ErrUpstreamUnavailable covers transport and credential failures of
	// the generation or persistence collaborators.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrTerminalStep        = errors.New("wizard is already at the final step")
	ErrFirstStep           = errors.New("wizard is already at the first step")
	ErrUnauthenticated     = errors.New("sign in required")

	// ErrGenerationInProgress rejects a second generate while one is outstanding.
	ErrGenerationInProgress = errors.New("a generation is already in progress")
	// ErrStaleGeneration marks a response that arrived after the session moved on.
	ErrStaleGeneration = errors.New("generation result discarded: session changed")
)

// ValidationError blocks a step transition. It never reaches the generator.
type ValidationError struct {
	Step    Step
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Step == 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Step, e.Field, e.Message)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
