package facttable

import "errors"

// Predefined errors for the facttable package.
var (
	// ErrNotFound indicates the fact table does not exist in the organization.
	ErrNotFound = errors.New("fact table not found")

	// ErrNoSampleRows indicates the sample query returned no rows, so no
	// column information could be learned.
	ErrNoSampleRows = errors.New("sample query returned no rows")
)
