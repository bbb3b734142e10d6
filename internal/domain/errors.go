package domain

import "errors"

// Failure taxonomy shared by repos, services and the HTTP layer. Callers
// classify with errors.Is; wrapping preserves the underlying cause.
var (
	ErrUnauthorized    = errors.New("no resolved identity")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrConflict        = errors.New("version conflict")
	ErrUnavailable     = errors.New("storage unavailable")
)
