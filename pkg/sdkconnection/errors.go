package sdkconnection

import "errors"

// Validation errors, one per rejection class. Each is user-correctable and
// reported with enough detail to pinpoint the offending field; none is ever
// retried automatically.
var (
	// ErrInvalidName indicates the connection name is missing or too short.
	ErrInvalidName = errors.New("connection name must be at least 3 characters")

	// ErrUnknownEnvironment indicates the environment is not configured for
	// the organization.
	ErrUnknownEnvironment = errors.New("unknown environment")

	// ErrUnknownProject indicates one or more project ids do not exist in the
	// organization. The joined detail lists every offending id.
	ErrUnknownProject = errors.New("unknown project")

	// ErrMissingLanguage indicates no SDK language was supplied.
	ErrMissingLanguage = errors.New("sdk connection requires a language")

	// ErrUnsupportedLanguage indicates the language is not a recognized SDK.
	ErrUnsupportedLanguage = errors.New("unsupported sdk language")

	// ErrUnsupportedCapability indicates a requested setting needs a
	// capability the resolved SDK version does not support.
	ErrUnsupportedCapability = errors.New("sdk version does not support capability")

	// ErrPremiumRequired indicates a requested setting needs a premium
	// entitlement the organization lacks.
	ErrPremiumRequired = errors.New("premium subscription required")
)

// Lookup errors.
var (
	// ErrConnectionNotFound indicates no connection exists for the given id
	// or API key.
	ErrConnectionNotFound = errors.New("sdk connection not found")

	// ErrConnectionExists indicates a connection with the same id already
	// exists.
	ErrConnectionExists = errors.New("sdk connection already exists")
)
