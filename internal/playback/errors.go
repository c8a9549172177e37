package playback

import (
	"errors"
	"fmt"
)

// Two distinct error categories so callers can tell "there is no session"
// apart from "you misused the API". Neither is ever silently absorbed.
var (
	ErrInvalidSessionState = errors.New("invalid session state")
	ErrInvalidArgument     = errors.New("invalid argument")
)

// SessionStateError reports an operation requested against an absent or
// wrong-state session.
type SessionStateError struct {
	Op    string
	State State
}

func (e *SessionStateError) Error() string {
	return fmt.Sprintf("%s: invalid session state %s", e.Op, e.State)
}

func (e *SessionStateError) Unwrap() error { return ErrInvalidSessionState }

// ValidationError reports malformed input to an engine call. It indicates
// a caller bug, not a missing session.
type ValidationError struct {
	Op     string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }
