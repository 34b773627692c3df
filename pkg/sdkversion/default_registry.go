package sdkversion

import "sync"

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the built-in capability registry shipped with flagkit.
// The tables are loaded once and shared; the returned registry is immutable.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := NewRegistry(defaultTables)
		if err != nil {
			// The built-in tables are verified by tests; a failure here is a bug.
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

var baseCapabilities = CapabilitySet{
	CapabilityBucketingV2,
	CapabilityLooseUnmarshal,
}

func with(base CapabilitySet, extra ...Capability) CapabilitySet {
	out := make(CapabilitySet, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

// defaultTables records, per language, at which version each capability was
// introduced. Entries must stay ordered by version and sets must only grow;
// NewRegistry enforces both.
var defaultTables = map[Language][]Entry{
	LanguageJavascript: {
		{MinVersion: "0.20.0", Capabilities: baseCapabilities},
		{MinVersion: "0.23.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting)},
		{MinVersion: "0.27.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityVisualEditor, CapabilityStreaming)},
		{MinVersion: "0.29.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityVisualEditor, CapabilityStreaming,
			CapabilityRemoteEval, CapabilityStickyBucketing)},
		{MinVersion: "0.31.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityVisualEditor, CapabilityStreaming,
			CapabilityRemoteEval, CapabilityStickyBucketing,
			CapabilityRedirects, CapabilityPrerequisites)},
	},
	LanguageReact: {
		{MinVersion: "0.11.0", Capabilities: baseCapabilities},
		{MinVersion: "0.16.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityVisualEditor, CapabilityStreaming)},
		{MinVersion: "0.21.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityVisualEditor, CapabilityStreaming,
			CapabilityRemoteEval, CapabilityStickyBucketing,
			CapabilityRedirects)},
	},
	LanguageNodejs: {
		{MinVersion: "0.20.0", Capabilities: baseCapabilities},
		{MinVersion: "0.23.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting)},
		{MinVersion: "0.29.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityRemoteEval, CapabilityStickyBucketing,
			CapabilityStreaming)},
	},
	LanguagePHP: {
		{MinVersion: "1.0.0", Capabilities: baseCapabilities},
		{MinVersion: "1.2.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting)},
		{MinVersion: "1.3.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityStickyBucketing)},
	},
	LanguagePython: {
		{MinVersion: "0.16.0", Capabilities: baseCapabilities},
		{MinVersion: "1.0.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting)},
		{MinVersion: "1.1.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityStickyBucketing, CapabilityRemoteEval)},
	},
	LanguageRuby: {
		{MinVersion: "1.0.0", Capabilities: baseCapabilities},
		{MinVersion: "1.3.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityStickyBucketing)},
	},
	LanguageJava: {
		{MinVersion: "0.6.0", Capabilities: baseCapabilities},
		{MinVersion: "0.9.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting)},
	},
	LanguageCsharp: {
		{MinVersion: "0.2.0", Capabilities: baseCapabilities},
		{MinVersion: "1.0.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption)},
	},
	LanguageGolang: {
		{MinVersion: "0.1.0", Capabilities: baseCapabilities},
		{MinVersion: "0.2.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityStickyBucketing)},
	},
	LanguageAndroid: {
		{MinVersion: "1.1.0", Capabilities: baseCapabilities},
		{MinVersion: "1.1.40", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityStickyBucketing, CapabilityRemoteEval)},
	},
	LanguageIOS: {
		{MinVersion: "1.0.30", Capabilities: baseCapabilities},
		{MinVersion: "1.0.44", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityStickyBucketing, CapabilityRemoteEval)},
	},
	LanguageFlutter: {
		{MinVersion: "1.0.0", Capabilities: baseCapabilities},
		{MinVersion: "1.1.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption)},
	},
	LanguageEdge: {
		{MinVersion: "0.1.0", Capabilities: with(baseCapabilities,
			CapabilityEncryption, CapabilitySemverTargeting,
			CapabilityRemoteEval)},
	},
}
