package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ValueType describes the JSON type of a feature's resolved value.
type ValueType string

const (
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeString  ValueType = "string"
	ValueTypeNumber  ValueType = "number"
	ValueTypeJSON    ValueType = "json"
)

// Attributes is a free-form attribute mapping describing one user, as decoded
// from JSON. Values follow encoding/json conventions (float64 for numbers,
// []any for arrays, map[string]any for objects).
type Attributes map[string]any

// VariationMeta carries human-readable metadata for one experiment variation.
// It is informational only and never affects evaluation.
type VariationMeta struct {
	Key  string `json:"key,omitempty" yaml:"key,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Rule is one targeting rule inside a feature definition. Rules are ordered
// and first match wins. A rule either forces a value (Force set) or assigns
// the user to an experiment variation (Variations set).
type Rule struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"`
	Condition Condition `json:"condition,omitempty" yaml:"condition,omitempty"`

	// Forced value. Mutually exclusive with Variations.
	Force json.RawMessage `json:"force,omitempty" yaml:"force,omitempty"`

	// Experiment assignment.
	Variations    []json.RawMessage `json:"variations,omitempty" yaml:"variations,omitempty"`
	Weights       []float64         `json:"weights,omitempty" yaml:"weights,omitempty"`
	Coverage      *float64          `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	Key           string            `json:"key,omitempty" yaml:"key,omitempty"`
	Seed          string            `json:"seed,omitempty" yaml:"seed,omitempty"`
	HashAttribute string            `json:"hashAttribute,omitempty" yaml:"hashAttribute,omitempty"`
	Meta          []VariationMeta   `json:"meta,omitempty" yaml:"meta,omitempty"`
	Name          string            `json:"name,omitempty" yaml:"name,omitempty"`

	// Sticky bucketing hints. Only meaningful to SDKs with the
	// stickyBucketing capability; the compiler strips them otherwise.
	FallbackAttribute string `json:"fallbackAttribute,omitempty" yaml:"fallbackAttribute,omitempty"`
	BucketVersion     int    `json:"bucketVersion,omitempty" yaml:"bucketVersion,omitempty"`
	MinBucketVersion  int    `json:"minBucketVersion,omitempty" yaml:"minBucketVersion,omitempty"`

	// Markers used by the compiler to decide whether a connection may see
	// this rule at all.
	Draft            bool   `json:"draft,omitempty" yaml:"draft,omitempty"`
	VisualExperiment bool   `json:"visualExperiment,omitempty" yaml:"visualExperiment,omitempty"`
	URLRedirect      string `json:"urlRedirect,omitempty" yaml:"urlRedirect,omitempty"`
}

// IsExperiment reports whether the rule assigns users to experiment
// variations rather than forcing a single value.
func (r *Rule) IsExperiment() bool {
	return len(r.Variations) > 0
}

// FeatureDefinition describes one feature flag: its default value and the
// ordered targeting rules that may override it. Definitions are read-only
// snapshots; the compiler and the evaluator never mutate them.
type FeatureDefinition struct {
	ID           string          `json:"id" yaml:"id"`
	ValueType    ValueType       `json:"valueType,omitempty" yaml:"valueType,omitempty"`
	DefaultValue json.RawMessage `json:"defaultValue" yaml:"defaultValue"`
	Projects     []string        `json:"projects,omitempty" yaml:"projects,omitempty"`
	Tags         []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Rules        []Rule          `json:"rules,omitempty" yaml:"rules,omitempty"`
	DateUpdated  time.Time       `json:"dateUpdated,omitzero" yaml:"dateUpdated,omitempty"`
}

// Validate checks structural invariants a definition must satisfy before it
// can be served to SDKs or evaluated.
func (d *FeatureDefinition) Validate() error {
	if d.ID == "" {
		return errors.Join(ErrInvalidDefinition, errors.New("feature id cannot be empty"))
	}
	for i := range d.Rules {
		rule := &d.Rules[i]
		if rule.Force != nil && rule.IsExperiment() {
			return errors.Join(ErrInvalidDefinition,
				fmt.Errorf("feature %q rule %d has both force and variations", d.ID, i))
		}
		if len(rule.Weights) > 0 && len(rule.Weights) != len(rule.Variations) {
			return errors.Join(ErrInvalidDefinition,
				fmt.Errorf("feature %q rule %d has %d weights for %d variations",
					d.ID, i, len(rule.Weights), len(rule.Variations)))
		}
	}
	return nil
}

// InProjects reports whether the feature is visible to a connection scoped to
// the given projects. A feature with an empty Projects set is visible
// everywhere; otherwise the two sets must intersect. An empty allowed set
// means the connection is unscoped and sees everything.
func (d *FeatureDefinition) InProjects(allowed []string) bool {
	if len(d.Projects) == 0 || len(allowed) == 0 {
		return true
	}
	for _, p := range d.Projects {
		for _, a := range allowed {
			if p == a {
				return true
			}
		}
	}
	return false
}
