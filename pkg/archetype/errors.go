package archetype

import "errors"

// Predefined errors for the archetype package.
var (
	// ErrNotFound indicates the archetype does not exist in the organization.
	ErrNotFound = errors.New("archetype not found")

	// ErrAlreadyExists indicates an archetype with the same id already exists.
	ErrAlreadyExists = errors.New("archetype already exists")

	// ErrInvalidAttributes indicates the attribute document is not valid JSON.
	ErrInvalidAttributes = errors.New("archetype attributes must be a valid JSON object")

	// ErrPremiumRequired indicates the organization's plan does not include
	// archetypes.
	ErrPremiumRequired = errors.New("archetypes require a premium subscription")
)
