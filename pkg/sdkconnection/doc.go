// Package sdkconnection validates and manages SDK connections: the named,
// scoped credentials client applications use to fetch feature definitions.
//
// Validation normalizes a client-supplied ConnectionRequest against three
// sources of truth: the organization's configured environments and projects,
// the capability registry (which SDK versions support which behaviors), and
// the organization's premium entitlements. Checks run in a fixed order with
// the first violation winning, so rejections are deterministic and each maps
// to one sentinel error (ErrInvalidName, ErrUnknownEnvironment, ...).
//
// Capability- and premium-gated settings are driven by declarative rule
// tables rather than hand-written branches; adding a gated setting means
// adding a table row.
//
//	conn, err := sdkconnection.Validate(ctx, &sdkconnection.ConnectionRequest{
//		Name:        "prod",
//		Environment: "production",
//		Language:    sdkversion.LanguageJavascript,
//	}, org, sdkversion.Default())
//	// conn.SDKVersion is resolved to the registry's latest javascript version,
//	// conn.Languages == []Language{"javascript"}
//
// Service layers key generation and persistence on top of Validate: Create
// assigns a fresh connection id, an "sdk-" API key, and an encryption key
// when payload encryption is enabled; Update re-runs validation while
// preserving the connection's identity.
package sdkconnection
