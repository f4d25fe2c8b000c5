package domain

import "errors"

var (
	// ErrSelectionPending is returned while a question-change command is still in flight.
	ErrSelectionPending = errors.New("question selection already in flight")
	// ErrCommandRejected indicates the server answered a command with a non-2xx status.
	ErrCommandRejected = errors.New("command rejected by server")
)
