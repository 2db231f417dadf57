package domain

import "errors"

var (
	// ErrStoreFailure is returned when a remote store request fails after
	// exhausting all retry attempts.
	ErrStoreFailure = errors.New("remote store request failed")

	// ErrMalformedResponse is returned when the remote store answers without
	// the expected response envelope. Not retryable.
	ErrMalformedResponse = errors.New("malformed remote store response")

	// ErrRecordNotFound is returned when a record cannot be found in the
	// remote store.
	ErrRecordNotFound = errors.New("record not found in remote store")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPaginationStall is reported when the fetch cursor fails to advance
	// while the store still claims remaining records.
	ErrPaginationStall = errors.New("pagination cursor failed to advance")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)
