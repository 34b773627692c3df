package payload

import "errors"

// Predefined errors for the payload package.
var (
	// ErrNotFound indicates the API key does not resolve to any connection.
	// Surfaced to the caller as-is; the HTTP mapping is the caller's concern.
	ErrNotFound = errors.New("sdk payload: api key not found")

	// ErrInternal indicates unexpected absence or corruption of organization
	// data. Details are logged, never surfaced, so internal state cannot leak
	// through error messages.
	ErrInternal = errors.New("sdk payload: internal error")

	// ErrEncryptionFailed indicates the compiled payload could not be
	// encrypted with the connection's key.
	ErrEncryptionFailed = errors.New("sdk payload: encryption failed")

	// ErrInvalidEncryptionKey indicates a malformed or wrongly sized
	// encryption key.
	ErrInvalidEncryptionKey = errors.New("sdk payload: invalid encryption key")
)
