package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict signals a uniqueness violation, e.g. a duplicate serial
	// number among non-deleted cylinders.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition is returned when a work action is not legal from
	// the cylinder's current status.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidRequest covers malformed inputs detected before any mutation:
	// duplicate ids in one batch, missing customer, unknown action.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrGone is returned when acting on a soft-deleted cylinder.
	ErrGone = errors.New("resource gone")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrInvalidCredentials hides whether username or password failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrSessionExpired     = errors.New("session expired")
)
