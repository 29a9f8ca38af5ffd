package service

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable is returned by the vision adapter when the model
// endpoint is unreachable, rate-limited, or out of credits. The resolver
// converts it into an inconclusive result instead of failing the caller.
var ErrUpstreamUnavailable = errors.New("vision model upstream unavailable")

// ErrVisionDisabled is returned when the vision stage is invoked without
// credentials configured. Callers must treat this as a configuration
// failure, not a classification verdict.
var ErrVisionDisabled = errors.New("vision model not configured")

// MalformedResponseError means the vision model returned output that is not
// valid structured data or omits required fields. The request fails rather
// than synthesizing a guess.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed vision model response: %s", e.Reason)
}

// IsMalformedResponse reports whether err is a MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}
