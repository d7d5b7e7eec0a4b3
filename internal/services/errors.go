package services

import "errors"

// Every error here is a per-request, recoverable condition. Handlers match
// with errors.Is and map to HTTP status codes; nothing is fatal to the process.
var (
	// ErrValidation covers bad input shape (empty name, malformed email).
	ErrValidation = errors.New("invalid input")

	// ErrNotFound covers lookups by code or id that match nothing.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the acting user is not the organizer.
	ErrForbidden = errors.New("forbidden")

	// ErrStateGuard is returned when an action is not legal in the event's
	// current state, e.g. drawing twice without reopening.
	ErrStateGuard = errors.New("action not allowed in current event state")

	// ErrInsufficientParticipants is returned by the draw when fewer than two
	// participants are registered.
	ErrInsufficientParticipants = errors.New("not enough participants for a draw")

	// ErrAssignmentUnsatisfiable is returned when no valid permutation was
	// found within the attempt bound.
	ErrAssignmentUnsatisfiable = errors.New("could not produce a valid assignment")

	// ErrAuthInvalid covers bad, expired and reused login tokens. Callers must
	// not distinguish which case applied.
	ErrAuthInvalid = errors.New("invalid or expired login link")

	// ErrIdentityUnresolved means no candidate key matched a participant of
	// the target event. Callers treat it as "not logged in".
	ErrIdentityUnresolved = errors.New("participant identity could not be resolved")
)
