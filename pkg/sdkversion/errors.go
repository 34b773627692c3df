package sdkversion

import "errors"

// Predefined errors for the sdkversion package.
var (
	// ErrUnknownLanguage indicates the requested SDK language is not in the registry.
	ErrUnknownLanguage = errors.New("unknown sdk language")

	// ErrInvalidVersion indicates the version string could not be parsed.
	ErrInvalidVersion = errors.New("invalid sdk version")

	// ErrInvalidRegistry indicates the registry data violates ordering or
	// capability monotonicity and cannot be loaded.
	ErrInvalidRegistry = errors.New("invalid capability registry")
)
