package sdkversion

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
)

// Language identifies an SDK implementation.
type Language string

// Supported SDK languages.
const (
	LanguageJavascript Language = "javascript"
	LanguageReact      Language = "react"
	LanguageNodejs     Language = "nodejs"
	LanguagePHP        Language = "php"
	LanguagePython     Language = "python"
	LanguageRuby       Language = "ruby"
	LanguageJava       Language = "java"
	LanguageCsharp     Language = "csharp"
	LanguageGolang     Language = "golang"
	LanguageAndroid    Language = "android"
	LanguageIOS        Language = "ios"
	LanguageFlutter    Language = "flutter"
	LanguageEdge       Language = "edge"
)

// Capability names a behavior a given SDK version is known to support.
type Capability string

// Known capability tags. New tags may appear in registry files without a
// corresponding constant; the registry treats them as opaque strings.
const (
	CapabilityEncryption       Capability = "encryption"
	CapabilityRemoteEval       Capability = "remoteEval"
	CapabilityStickyBucketing  Capability = "stickyBucketing"
	CapabilityVisualEditor     Capability = "visualEditor"
	CapabilityRedirects        Capability = "redirects"
	CapabilitySemverTargeting  Capability = "semverTargeting"
	CapabilityBucketingV2      Capability = "bucketingV2"
	CapabilityStreaming        Capability = "streaming"
	CapabilityLooseUnmarshal   Capability = "looseUnmarshalling"
	CapabilityPrerequisites    Capability = "prerequisites"
	CapabilitySecureAttributes Capability = "encryptSecureAttributes"
)

// CapabilitySet is an ordered collection of capability tags.
type CapabilitySet []Capability

// Has reports whether the set contains the given capability.
func (s CapabilitySet) Has(c Capability) bool {
	return slices.Contains(s, c)
}

// Entry describes the capabilities available starting at MinVersion for a
// single language. Entries for one language are ordered by ascending
// MinVersion and capability sets only ever grow between entries.
type Entry struct {
	MinVersion   string        `yaml:"minVersion"`
	Capabilities CapabilitySet `yaml:"capabilities"`
}

// Registry maps (language, version) pairs to capability sets. It is
// immutable after construction and safe for unsynchronized concurrent reads.
type Registry struct {
	languages map[Language][]entry
}

type entry struct {
	minVersion   *semver.Version
	capabilities CapabilitySet
}

// NewRegistry builds a registry from per-language entry lists. It verifies
// that entries are ordered by ascending version and that capability sets are
// monotonically non-decreasing; a violation is a configuration bug and fails
// construction.
func NewRegistry(languages map[Language][]Entry) (*Registry, error) {
	r := &Registry{languages: make(map[Language][]entry, len(languages))}

	for lang, entries := range languages {
		if len(entries) == 0 {
			return nil, errors.Join(ErrInvalidRegistry,
				fmt.Errorf("language %q has no entries", lang))
		}

		parsed := make([]entry, 0, len(entries))
		for _, e := range entries {
			v, err := semver.NewVersion(e.MinVersion)
			if err != nil {
				return nil, errors.Join(ErrInvalidRegistry,
					fmt.Errorf("language %q: bad version %q: %w", lang, e.MinVersion, err))
			}
			parsed = append(parsed, entry{
				minVersion:   v,
				capabilities: slices.Clone(e.Capabilities),
			})
		}

		for i := 1; i < len(parsed); i++ {
			prev, cur := parsed[i-1], parsed[i]
			if !prev.minVersion.LessThan(cur.minVersion) {
				return nil, errors.Join(ErrInvalidRegistry,
					fmt.Errorf("language %q: versions out of order at %s", lang, cur.minVersion))
			}
			for _, c := range prev.capabilities {
				if !cur.capabilities.Has(c) {
					return nil, errors.Join(ErrInvalidRegistry,
						fmt.Errorf("language %q: version %s drops capability %q", lang, cur.minVersion, c))
				}
			}
		}

		r.languages[lang] = parsed
	}

	return r, nil
}

// LatestVersion returns the newest known version for the given language.
func (r *Registry) LatestVersion(lang Language) (string, error) {
	entries, ok := r.languages[lang]
	if !ok {
		return "", errors.Join(ErrUnknownLanguage, fmt.Errorf("language %q", lang))
	}
	return entries[len(entries)-1].minVersion.String(), nil
}

// CapabilitiesFor returns the capability set of the given language at the
// given version: the set of the newest entry whose MinVersion does not exceed
// the requested version. Versions older than the first entry have no
// capabilities.
func (r *Registry) CapabilitiesFor(lang Language, version string) (CapabilitySet, error) {
	entries, ok := r.languages[lang]
	if !ok {
		return nil, errors.Join(ErrUnknownLanguage, fmt.Errorf("language %q", lang))
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, errors.Join(ErrInvalidVersion,
			fmt.Errorf("language %q: version %q: %w", lang, version, err))
	}

	var result CapabilitySet
	for _, e := range entries {
		if e.minVersion.GreaterThan(v) {
			break
		}
		result = e.capabilities
	}
	return slices.Clone(result), nil
}

// Languages returns all languages known to the registry, sorted.
func (r *Registry) Languages() []Language {
	langs := make([]Language, 0, len(r.languages))
	for lang := range r.languages {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// Supports reports whether the language is known to the registry.
func (r *Registry) Supports(lang Language) bool {
	_, ok := r.languages[lang]
	return ok
}
