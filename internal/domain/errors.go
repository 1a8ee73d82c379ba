package domain

import "errors"

var (
	// ErrActivityNotFound is returned when the referenced activity does not exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrModuleNotFound is returned when the referenced module does not exist.
	ErrModuleNotFound = errors.New("module not found")
	// ErrAttemptLimitReached is returned when a submission is rejected by the attempt limit.
	ErrAttemptLimitReached = errors.New("attempt limit reached")
	// ErrPersistence wraps storage failures that aborted a grading pass.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidUser indicates a missing or malformed user id.
	ErrInvalidUser = errors.New("invalid user")
)
