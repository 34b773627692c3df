// Package sdkversion maintains the registry of SDK languages, versions, and
// the capabilities each version supports.
//
// The registry answers two questions for the rest of the system: what is the
// latest known version for a given SDK language, and which capability tags a
// given (language, version) pair supports. Connection validation uses the
// answers to gate capability-dependent settings, and payload compilation uses
// them to decide which fields an SDK can understand.
//
// # Usage
//
//	reg := sdkversion.Default()
//
//	latest, err := reg.LatestVersion(sdkversion.LanguageJavascript)
//	if err != nil {
//		// unknown language
//	}
//
//	caps, err := reg.CapabilitiesFor(sdkversion.LanguageJavascript, "0.27.0")
//	if err != nil {
//		// unknown language or unparseable version
//	}
//	if caps.Has(sdkversion.CapabilityEncryption) {
//		// the SDK can decrypt payloads
//	}
//
// A registry can also be loaded from YAML with Load, which is how deployments
// pick up capability tables for SDK releases newer than the built-in set.
//
// # Invariants
//
// For a given language, entries are totally ordered by version and capability
// sets are monotonically non-decreasing: a newer version never loses a
// capability present in an older one. Both properties are verified when the
// registry is constructed; a violation is a configuration bug and fails the
// load. After construction the registry is immutable and safe for
// unsynchronized concurrent reads.
package sdkversion
