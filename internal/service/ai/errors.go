package ai

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable marks transport or auth failures talking to the
// completion API. The upstream message is wrapped verbatim so the caller
// can surface it.
var ErrUpstreamUnavailable = errors.New("upstream completion service unavailable")

// ErrUnknownRequestType marks an ai-request whose requestType has no
// prompt template.
var ErrUnknownRequestType = errors.New("unknown AI request type")

// MissingFieldError reports a required prompt field absent from the
// request payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// MalformedCompletionError reports a completion that was not valid JSON.
// Raw carries the full upstream text so the UI can show something rather
// than nothing.
type MalformedCompletionError struct {
	Raw string
}

func (e *MalformedCompletionError) Error() string {
	return "completion response is not valid JSON"
}
