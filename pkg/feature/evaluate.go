package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResultSource names how an evaluation result was produced.
type ResultSource string

const (
	SourceDefaultValue ResultSource = "defaultValue"
	SourceForce        ResultSource = "force"
	SourceExperiment   ResultSource = "experiment"
)

// Result is the outcome of evaluating one feature definition against one
// attribute set.
type Result struct {
	Value  json.RawMessage `json:"value"`
	On     bool            `json:"on"`
	Source ResultSource    `json:"source"`

	// Set when a rule produced the result.
	RuleID string `json:"ruleId,omitempty"`

	// Set when the result is an experiment assignment.
	ExperimentKey  string  `json:"experimentKey,omitempty"`
	VariationIndex int     `json:"variationIndex,omitempty"`
	Bucket         float64 `json:"bucket,omitempty"`
	InExperiment   bool    `json:"inExperiment,omitempty"`
}

// Evaluate resolves a feature definition against one attribute set.
//
// Rules are visited in declaration order and the first match wins: a matching
// rule either forces its value or deterministically assigns an experiment
// variation by hashing the designated attribute. When no rule matches, the
// feature's default value applies.
//
// Evaluate is a pure function. It never mutates its inputs and identical
// (definition, attributes) pairs always yield the identical result, which is
// what lets preview tooling and golden-file tests rely on re-runs being
// stable. Rules that cannot be applied (unmatched conditions, missing hash
// attribute, malformed traffic splits) are skipped, never fatal.
func Evaluate(def *FeatureDefinition, attrs Attributes) Result {
	for i := range def.Rules {
		rule := &def.Rules[i]

		if len(rule.Condition) > 0 && !rule.Condition.Matches(attrs) {
			continue
		}

		if rule.Force != nil {
			return Result{
				Value:  rule.Force,
				On:     truthy(rule.Force),
				Source: SourceForce,
				RuleID: rule.ID,
			}
		}

		if !rule.IsExperiment() {
			continue
		}

		result, ok := runExperiment(def, rule, attrs)
		if !ok {
			continue
		}
		return result
	}

	return Result{
		Value:  def.DefaultValue,
		On:     truthy(def.DefaultValue),
		Source: SourceDefaultValue,
	}
}

// runExperiment computes a deterministic variation assignment for an
// experiment rule. ok=false means the rule does not apply to this user and
// evaluation should continue with the next rule.
func runExperiment(def *FeatureDefinition, rule *Rule, attrs Attributes) (Result, bool) {
	hashAttr := rule.HashAttribute
	if hashAttr == "" {
		hashAttr = "id"
	}

	raw, exists := getPath(attrs, hashAttr)
	if !exists {
		return Result{}, false
	}
	hashValue := stringifyAttribute(raw)
	if hashValue == "" {
		return Result{}, false
	}

	seed := rule.Seed
	if seed == "" {
		seed = rule.Key
	}
	if seed == "" {
		seed = def.ID
	}

	coverage := 1.0
	if rule.Coverage != nil {
		coverage = *rule.Coverage
	}

	bucket := Bucket(seed, hashValue)
	idx := chooseVariation(bucket, bucketRanges(len(rule.Variations), coverage, rule.Weights))
	if idx < 0 {
		return Result{}, false
	}

	key := rule.Key
	if key == "" {
		key = def.ID
	}

	value := rule.Variations[idx]
	return Result{
		Value:          value,
		On:             truthy(value),
		Source:         SourceExperiment,
		RuleID:         rule.ID,
		ExperimentKey:  key,
		VariationIndex: idx,
		Bucket:         bucket,
		InExperiment:   true,
	}, true
}

// stringifyAttribute renders an attribute value the way SDKs do before
// hashing it: strings as-is, numbers without a trailing ".0", everything else
// via JSON encoding.
func stringifyAttribute(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// truthy mirrors the JavaScript truthiness SDK clients apply to resolved
// values when exposing an on/off view of a feature.
func truthy(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	switch string(trimmed) {
	case "", "null", "false", "0", `""`:
		return false
	default:
		return true
	}
}
