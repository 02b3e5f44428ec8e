package service

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: empty ids, non-positive limits,
	// empty update payloads. Handlers map it to 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks updates targeting a record that does not exist.
	// Handlers map it to 404.
	ErrNotFound = errors.New("not found")
)
