// Package payload compiles the feature-definitions document an SDK
// connection receives at runtime.
//
// Compilation starts from an API key. A Resolver turns the key into Params —
// organization, environment, capability set, project scope, and the
// connection's visibility and encryption settings — and the Compiler then
// filters the organization's full feature and experiment state down to
// exactly what that connection may see:
//
//   - features whose project scope is disjoint from the connection's are
//     dropped entirely
//   - draft, visual-editor, and URL-redirect rules are dropped unless the
//     connection opted in and the SDK has the matching capability
//   - sticky-bucketing hints and experiment display names are stripped when
//     the SDK cannot use them
//   - with hashSecureAttributes, string values under secure attributes are
//     replaced by salted HMAC-SHA256 hashes, so SDKs can match conditions
//     without learning the underlying values
//
// # Determinism
//
// Compile is idempotent: unchanged feature state and unchanged connection
// scope produce byte-identical documents, which is what allows an upstream
// layer to cache payloads keyed on (API key, environment). Determinism is
// preserved through encryption by deriving the AES-GCM nonce from the key
// and plaintext instead of random bytes; see encrypt.
//
// # Usage
//
//	resolver := payload.NewConnectionResolver(connStore, sdkversion.Default())
//	compiler := payload.New(resolver, featureSource)
//
//	doc, err := compiler.Compile(ctx, apiKey, nil)
//	switch {
//	case errors.Is(err, payload.ErrNotFound):
//		// unknown API key; caller decides the HTTP mapping
//	case err != nil:
//		// ErrInternal: details were logged, none leak to the caller
//	}
//	body, _ := doc.JSON()
//
// Exactly one of Features/EncryptedFeatures is populated on the result,
// never both.
package payload
