package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNetwork indicates a catalog or counter-store request failed in transport
	ErrNetwork = errors.New("network request failed")

	// ErrPersistence indicates a local durable read or write failed
	ErrPersistence = errors.New("local persistence failed")

	// ErrNotFound indicates the requested item or record does not exist
	ErrNotFound = errors.New("not found")

	// ErrAuthFailed indicates the configured credential was rejected
	ErrAuthFailed = errors.New("credential was rejected")

	// ErrConflict indicates a record with the same unique key already exists
	ErrConflict = errors.New("record already exists")

	// ErrStoreClosed indicates an operation on a closed store
	ErrStoreClosed = errors.New("store is closed")
)
