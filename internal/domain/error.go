package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidRange      = errors.New("unknown time range")
	ErrCacheMiss         = errors.New("cache miss")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrMissingCredential = errors.New("text generation credential is not configured")
	ErrNoMessages        = errors.New("no messages to analyze")
)
