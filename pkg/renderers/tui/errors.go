package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when the form stays invalid after the
	// configured number of submit attempts.
	ErrTooManyAttempts = errors.New("tui: form still invalid")
)
