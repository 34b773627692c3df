package feature

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Condition is a predicate over user attributes, expressed as a decoded JSON
// object in a Mongo-style query syntax. Keys are attribute paths (dots
// descend into nested objects) mapped to expected values or operator
// objects, with $and/$or/$nor/$not combinators at any level.
//
// Evaluation is pure: a condition never mutates the attributes and identical
// inputs always produce the identical verdict. Unknown operators and
// malformed operands evaluate to false rather than erroring, matching the
// behavior of SDKs in the field.
type Condition map[string]any

// Matches reports whether the attributes satisfy the condition. An empty
// condition matches everything.
func (c Condition) Matches(attrs Attributes) bool {
	for key, expected := range c {
		switch key {
		case "$and":
			if !matchAll(expected, attrs) {
				return false
			}
		case "$or":
			if !matchAny(expected, attrs) {
				return false
			}
		case "$nor":
			if matchAny(expected, attrs) {
				return false
			}
		case "$not":
			sub, ok := expected.(map[string]any)
			if !ok || Condition(sub).Matches(attrs) {
				return false
			}
		default:
			actual, exists := getPath(attrs, key)
			if !evalConditionValue(expected, actual, exists) {
				return false
			}
		}
	}
	return true
}

func matchAll(list any, attrs Attributes) bool {
	conds, ok := list.([]any)
	if !ok {
		return false
	}
	for _, c := range conds {
		sub, ok := c.(map[string]any)
		if !ok || !Condition(sub).Matches(attrs) {
			return false
		}
	}
	return true
}

func matchAny(list any, attrs Attributes) bool {
	conds, ok := list.([]any)
	if !ok {
		return false
	}
	// An empty $or matches everything.
	if len(conds) == 0 {
		return true
	}
	for _, c := range conds {
		if sub, ok := c.(map[string]any); ok && Condition(sub).Matches(attrs) {
			return true
		}
	}
	return false
}

// getPath resolves a dotted attribute path against the attribute map.
func getPath(attrs Attributes, path string) (any, bool) {
	var current any = map[string]any(attrs)
	for part := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// evalConditionValue compares one expected condition value against one actual
// attribute value. Operator objects (every key prefixed with "$") dispatch to
// operator evaluation; anything else is an implicit equality check.
func evalConditionValue(expected, actual any, exists bool) bool {
	if obj, ok := expected.(map[string]any); ok && isOperatorObject(obj) {
		for op, operand := range obj {
			if !evalOperator(op, operand, actual, exists) {
				return false
			}
		}
		return true
	}
	return exists && looseEqual(expected, actual)
}

func isOperatorObject(obj map[string]any) bool {
	if len(obj) == 0 {
		return false
	}
	for k := range obj {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func evalOperator(op string, operand, actual any, exists bool) bool {
	switch op {
	case "$eq":
		return exists && looseEqual(operand, actual)
	case "$ne":
		return !exists || !looseEqual(operand, actual)
	case "$lt", "$lte", "$gt", "$gte":
		cmp, ok := compare(actual, operand)
		if !ok {
			return false
		}
		switch op {
		case "$lt":
			return cmp < 0
		case "$lte":
			return cmp <= 0
		case "$gt":
			return cmp > 0
		default:
			return cmp >= 0
		}
	case "$in":
		return exists && inList(operand, actual)
	case "$nin":
		return !exists || !inList(operand, actual)
	case "$exists":
		want, ok := operand.(bool)
		if !ok {
			return false
		}
		return exists == want
	case "$regex":
		pattern, ok := operand.(string)
		if !ok {
			return false
		}
		str, ok := actual.(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(str)
	case "$elemMatch":
		return elemMatch(operand, actual)
	case "$size":
		list, ok := actual.([]any)
		if !ok {
			return false
		}
		return evalConditionValue(operand, float64(len(list)), true)
	case "$all":
		return allMatch(operand, actual)
	case "$not":
		return !evalConditionValue(operand, actual, exists)
	case "$type":
		want, ok := operand.(string)
		return ok && jsonType(actual) == want
	case "$veq", "$vne", "$vlt", "$vlte", "$vgt", "$vgte":
		return compareVersions(op, operand, actual)
	default:
		// Unknown operator: fail the check rather than guessing.
		return false
	}
}

// inList implements $in semantics: the attribute matches if it equals any
// list element, or, when the attribute itself is a list, if the two lists
// intersect.
func inList(operand, actual any) bool {
	list, ok := operand.([]any)
	if !ok {
		return false
	}
	actuals, isList := actual.([]any)
	if !isList {
		actuals = []any{actual}
	}
	for _, want := range list {
		for _, have := range actuals {
			if looseEqual(want, have) {
				return true
			}
		}
	}
	return false
}

func elemMatch(operand, actual any) bool {
	list, ok := actual.([]any)
	if !ok {
		return false
	}
	cond, isCond := operand.(map[string]any)
	for _, elem := range list {
		if isCond && !isOperatorObject(cond) {
			// Full condition applied to object elements.
			if obj, ok := elem.(map[string]any); ok && Condition(cond).Matches(Attributes(obj)) {
				return true
			}
			continue
		}
		if evalConditionValue(operand, elem, true) {
			return true
		}
	}
	return false
}

func allMatch(operand, actual any) bool {
	wants, ok := operand.([]any)
	if !ok {
		return false
	}
	haves, ok := actual.([]any)
	if !ok {
		return false
	}
	for _, want := range wants {
		found := false
		for _, have := range haves {
			if evalConditionValue(want, have, true) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// looseEqual compares two decoded JSON values, tolerating the int/float64
// mismatch that appears when one side was built in Go instead of decoded.
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two values: numerically when both are numbers,
// lexicographically when both are strings. Returns ok=false for incomparable
// types.
func compare(a, b any) (int, bool) {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// jsonType names the JSON type of a decoded value.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

// compareVersions implements the semver targeting operators. Unparseable
// versions fail the check.
func compareVersions(op string, operand, actual any) bool {
	want, ok := operand.(string)
	if !ok {
		return false
	}
	have, ok := actual.(string)
	if !ok {
		return false
	}
	wv, err := semver.NewVersion(want)
	if err != nil {
		return false
	}
	hv, err := semver.NewVersion(have)
	if err != nil {
		return false
	}
	cmp := hv.Compare(wv)
	switch op {
	case "$veq":
		return cmp == 0
	case "$vne":
		return cmp != 0
	case "$vlt":
		return cmp < 0
	case "$vlte":
		return cmp <= 0
	case "$vgt":
		return cmp > 0
	default:
		return cmp >= 0
	}
}
