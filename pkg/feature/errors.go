package feature

import "errors"

// Predefined errors for the feature package.
var (
	// ErrInvalidDefinition indicates a feature definition that cannot be
	// evaluated or served (missing id, inconsistent experiment rules).
	ErrInvalidDefinition = errors.New("invalid feature definition")
)
