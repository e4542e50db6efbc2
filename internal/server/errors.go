package server

import (
	"errors"
	"fmt"
)

// State-conflict and authorization failures carry distinct messages so the
// caller's UI can react precisely. They are returned through command acks,
// never as partial mutations.
var (
	errNoActiveGame       = errors.New("no active game")
	errGameNotRunning     = errors.New("game is not running")
	errGameEnded          = errors.New("game has ended")
	errGameAlreadyStarted = errors.New("game already started")
	errImageNotFound      = errors.New("image not found")
	errImageAlreadyPlayed = errors.New("image already played")
	errNoUnplayedImages   = errors.New("no unplayed images")
	errPlayerNotFound     = errors.New("player not found")
	errNameTaken          = errors.New("name already taken")
	errNotAuthorized      = errors.New("not authorized")
	errInvalidPIN         = errors.New("invalid pin")
	errPINExpired         = errors.New("pin expired")
)

// validationError marks synchronous input rejections whose message is safe
// to echo back through the command ack.
type validationError string

func (e validationError) Error() string { return string(e) }

func invalidInput(format string, args ...any) error {
	return validationError(fmt.Sprintf(format, args...))
}

// failureMessage maps an operation error to the ack message. Typed state,
// authorization and validation failures keep their message; anything else
// is a transient store failure surfaced generically.
func failureMessage(err error) (string, bool) {
	var invalid validationError
	if errors.As(err, &invalid) {
		return invalid.Error(), true
	}
	for _, known := range []error{
		errNoActiveGame, errGameNotRunning, errGameEnded, errGameAlreadyStarted,
		errImageNotFound, errImageAlreadyPlayed, errNoUnplayedImages,
		errPlayerNotFound, errNameTaken, errNotAuthorized, errInvalidPIN, errPINExpired,
	} {
		if errors.Is(err, known) {
			return known.Error(), true
		}
	}
	return "internal error", false
}
