package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every caller-facing error wraps exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrSessionNotFound is returned when no live session uses the code.
	ErrSessionNotFound = fmt.Errorf("quiz session %w", ErrNotFound)

	ErrEmptyName              = fmt.Errorf("%w: user name cannot be empty", ErrInvalidArgument)
	ErrInvalidQuestionSeconds = fmt.Errorf("%w: question seconds must be positive", ErrInvalidArgument)
	ErrInvalidDelay           = fmt.Errorf("%w: delay seconds cannot be negative", ErrInvalidArgument)
	// ErrStaleQuestion is returned for answers to a question that is not the current one.
	ErrStaleQuestion = fmt.Errorf("%w: question is not the current one", ErrInvalidArgument)
	ErrInvalidChoice = fmt.Errorf("%w: answer index out of range", ErrInvalidArgument)

	ErrNameTaken             = fmt.Errorf("%w: user name is already occupied", ErrConflict)
	ErrSessionNotRunning     = fmt.Errorf("%w: quiz is not running", ErrConflict)
	ErrSessionNotSchedulable = fmt.Errorf("%w: quiz can no longer be scheduled", ErrConflict)

	// ErrUnknownToken is returned when the token is not among the session's players.
	ErrUnknownToken = fmt.Errorf("%w: user token not found among the quiz users", ErrUnauthorized)
	ErrNotCommander = fmt.Errorf("%w: current user is not a quiz commander", ErrForbidden)
)

// Kind names an error kind on the wire.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	KindConflict        Kind = "CONFLICT"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindForbidden       Kind = "FORBIDDEN"
	KindInternal        Kind = "INTERNAL"
)

// KindOf classifies err. Errors outside the taxonomy are KindInternal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}
