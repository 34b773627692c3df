package payload

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/dmitrymomot/flagkit/pkg/feature"
	"github.com/dmitrymomot/flagkit/pkg/sdkversion"
)

// transformFeature produces the connection-specific view of one feature
// definition: rules the connection may not see are dropped, fields its
// capability set cannot interpret are stripped, and secure attribute values
// are hashed when requested. The input definition is never mutated.
func transformFeature(def *feature.FeatureDefinition, params *Params, secureAttrs []string, salt string) *feature.FeatureDefinition {
	out := &feature.FeatureDefinition{
		ID:           def.ID,
		ValueType:    def.ValueType,
		DefaultValue: def.DefaultValue,
	}

	for i := range def.Rules {
		rule := def.Rules[i] // copy

		if rule.Draft && !params.IncludeDraftExperiments {
			continue
		}
		if rule.VisualExperiment &&
			(!params.IncludeVisualExperiments || !params.Capabilities.Has(sdkversion.CapabilityVisualEditor)) {
			continue
		}
		if rule.URLRedirect != "" &&
			(!params.IncludeRedirectExperiments || !params.Capabilities.Has(sdkversion.CapabilityRedirects)) {
			continue
		}

		if !params.Capabilities.Has(sdkversion.CapabilityStickyBucketing) {
			rule.FallbackAttribute = ""
			rule.BucketVersion = 0
			rule.MinBucketVersion = 0
		}

		if !params.IncludeExperimentNames {
			rule.Name = ""
			rule.Meta = stripMetaNames(rule.Meta)
		}

		if params.HashSecureAttributes && len(rule.Condition) > 0 {
			rule.Condition = hashCondition(rule.Condition, secureAttrs, salt)
		} else {
			rule.Condition = cloneCondition(rule.Condition)
		}

		out.Rules = append(out.Rules, rule)
	}

	return out
}

// transformExperiment applies the same visibility and capability rules to an
// auto experiment. ok=false means the connection may not see it at all.
func transformExperiment(exp *AutoExperiment, params *Params, secureAttrs []string, salt string) (*AutoExperiment, bool) {
	if !inProjects(exp.Projects, params.Projects) {
		return nil, false
	}
	if exp.Draft && !params.IncludeDraftExperiments {
		return nil, false
	}
	if exp.Visual &&
		(!params.IncludeVisualExperiments || !params.Capabilities.Has(sdkversion.CapabilityVisualEditor)) {
		return nil, false
	}
	if exp.RedirectURL != "" &&
		(!params.IncludeRedirectExperiments || !params.Capabilities.Has(sdkversion.CapabilityRedirects)) {
		return nil, false
	}

	out := *exp
	out.Variations = slices.Clone(exp.Variations)
	out.Weights = slices.Clone(exp.Weights)
	if !params.IncludeExperimentNames {
		out.Name = ""
	}
	if params.HashSecureAttributes && len(exp.Condition) > 0 {
		out.Condition = hashCondition(exp.Condition, secureAttrs, salt)
	} else {
		out.Condition = cloneCondition(exp.Condition)
	}
	return &out, true
}

func inProjects(have, allowed []string) bool {
	if len(have) == 0 || len(allowed) == 0 {
		return true
	}
	for _, p := range have {
		if slices.Contains(allowed, p) {
			return true
		}
	}
	return false
}

func stripMetaNames(meta []feature.VariationMeta) []feature.VariationMeta {
	if len(meta) == 0 {
		return nil
	}
	out := make([]feature.VariationMeta, len(meta))
	for i, m := range meta {
		out[i] = feature.VariationMeta{Key: m.Key}
	}
	return out
}

// hashAttributeValue is the one-way transform applied to secure attribute
// values: HMAC-SHA256 keyed by the per-organization secret, hex-encoded with
// a scheme prefix. SDKs apply the same transform to the live attribute before
// matching, so they can evaluate the condition without ever seeing the
// original value. The transform is deterministic; repeated compilations of
// unchanged input stay byte-identical.
func hashAttributeValue(salt, value string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(value))
	return "sha256:" + hex.EncodeToString(mac.Sum(nil))
}

// hashCondition rebuilds a condition with every string value under a secure
// attribute replaced by its salted hash. Structure and ordering are
// preserved; the input is never mutated.
func hashCondition(cond feature.Condition, secureAttrs []string, salt string) feature.Condition {
	out := make(feature.Condition, len(cond))
	for key, value := range cond {
		switch key {
		case "$and", "$or", "$nor":
			out[key] = hashConditionList(value, secureAttrs, salt)
		case "$not":
			if sub, ok := value.(map[string]any); ok {
				out[key] = map[string]any(hashCondition(feature.Condition(sub), secureAttrs, salt))
			} else {
				out[key] = value
			}
		default:
			if slices.Contains(secureAttrs, key) {
				out[key] = hashConditionValue(value, salt)
			} else {
				out[key] = deepCloneValue(value)
			}
		}
	}
	return out
}

func hashConditionList(value any, secureAttrs []string, salt string) any {
	list, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]any, len(list))
	for i, item := range list {
		if sub, ok := item.(map[string]any); ok {
			out[i] = map[string]any(hashCondition(feature.Condition(sub), secureAttrs, salt))
		} else {
			out[i] = item
		}
	}
	return out
}

// hashConditionValue hashes the comparable parts of one condition value:
// plain strings, and string operands of $eq/$ne/$in/$nin inside operator
// objects. Operators that compare shapes rather than values ($exists, $size)
// pass through untouched.
func hashConditionValue(value any, salt string) any {
	switch v := value.(type) {
	case string:
		return hashAttributeValue(salt, v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for op, operand := range v {
			switch op {
			case "$eq", "$ne":
				out[op] = hashConditionValue(operand, salt)
			case "$in", "$nin":
				if list, ok := operand.([]any); ok {
					hashed := make([]any, len(list))
					for i, item := range list {
						hashed[i] = hashConditionValue(item, salt)
					}
					out[op] = hashed
				} else {
					out[op] = operand
				}
			default:
				out[op] = deepCloneValue(operand)
			}
		}
		return out
	default:
		return value
	}
}

func cloneCondition(cond feature.Condition) feature.Condition {
	if cond == nil {
		return nil
	}
	out := make(feature.Condition, len(cond))
	for k, v := range cond {
		out[k] = deepCloneValue(v)
	}
	return out
}

func deepCloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCloneValue(item)
		}
		return out
	default:
		return v
	}
}
