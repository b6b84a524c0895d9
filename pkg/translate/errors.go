package translate

import "fmt"

// Kind classifies a translate failure for transport status mapping.
type Kind int

const (
	// KindBadRequest covers missing or invalid parameters and unavailable
	// language pairs. Maps to 400.
	KindBadRequest Kind = iota
	// KindEngineFailure covers errors raised by the translation engine while
	// generating hypotheses. Maps to 500.
	KindEngineFailure
	// KindUnavailable is the admission-layer rate limit signal. Maps to 429.
	KindUnavailable
)

// Error is the single error surface the core exposes to the transport layer.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func badRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func engineFailure(cause error, text string) *Error {
	return &Error{
		Kind:    KindEngineFailure,
		Message: fmt.Sprintf("cannot translate text: %q", text),
		cause:   cause,
	}
}

// BadRequest builds a parameter validation error for transport-level checks
// that happen before the core runs (malformed body, oversized input).
func BadRequest(format string, args ...any) *Error {
	return badRequestf(format, args...)
}

// Unavailable wraps an admission rejection so it shares the core's error
// surface.
func Unavailable(message string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, cause: cause}
}
