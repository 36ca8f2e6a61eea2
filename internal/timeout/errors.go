package timeout

import "errors"

var (
	// ErrValidation means Start was called with missing or unusable inputs.
	// The controller's prior state is untouched when this is returned.
	ErrValidation = errors.New("timeout: validation failed")

	// ErrIndexOutOfRange means a prompt index outside the template's range
	// was passed. This indicates a caller bug, not a runtime condition.
	ErrIndexOutOfRange = errors.New("timeout: prompt index out of range")

	// ErrSessionActive means Start was called while a session is Running or
	// Paused. Stop or Reset the current session first.
	ErrSessionActive = errors.New("timeout: a session is already active")

	// ErrNoSession means the operation needs a started session.
	ErrNoSession = errors.New("timeout: no session started")
)
