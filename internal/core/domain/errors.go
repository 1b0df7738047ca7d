package domain

import "errors"

var (
	// ErrStorageUnavailable is returned when the log or roster cannot be
	// locked, read or written.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrWorkerExists       = errors.New("worker already exists")
	ErrInvalidInput       = errors.New("invalid input")
	// ErrMalformedRecord marks a log entry with an unparsable timestamp. It
	// is handled inside the stores and never reaches API callers.
	ErrMalformedRecord    = errors.New("malformed record")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
