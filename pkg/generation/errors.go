package generation

import (
	"errors"

	"policygen/pkg/wizard"
)

var (
	// ErrMalformedResponse means the upstream body broke the documents contract.
	ErrMalformedResponse = errors.New("malformed generation response")
	// ErrEmptyGeneration means the body parsed but no requested document came back.
	ErrEmptyGeneration = errors.New("nothing was generated")
	// ErrGenerationTimeout means the upstream call exceeded its deadline.
	ErrGenerationTimeout = errors.New("generation timed out")

	ErrUpstreamUnavailable = wizard.ErrUpstreamUnavailable
)

// UpstreamError carries the human readable message of an upstream failure
// envelope.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "generation failed upstream: " + e.Message
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamUnavailable
}
